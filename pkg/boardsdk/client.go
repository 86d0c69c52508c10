package boardsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to one consultboard server.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is sent as a bearer token when non-empty.
	Token string
}

// NewSDKClient creates a client with a 10s request timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
