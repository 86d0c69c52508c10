package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/aussiebroadwan/consultboard/pkg/jwtx"
	"github.com/spf13/cobra"
)

func newTokenCmd(o *options) *cobra.Command {
	var (
		secret  string
		issuer  string
		subject string
		name    string
		scopes  []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator token for a board API started with BOARD_JWT_SECRET",
		Long: `Sign an HS256 access token with the server's shared secret.

Examples:
  BOARD_JWT_SECRET=... boardctl token --subject ana
  boardctl token --subject kiosk --scope board:read --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signer, err := jwtx.NewSignerHS256([]byte(secret))
			if err != nil {
				return o.p.Error("cannot sign token", err.Error(),
					[]string{fmt.Sprintf("Pass --secret or set BOARD_JWT_SECRET (at least %d bytes)", jwtx.MinSecretLength)})
			}

			claims := jwtx.NewAccessClaims(subject, name, scopes, ttl, issuer, time.Now())
			tok, err := signer.Sign(claims)
			if err != nil {
				return o.p.Error("cannot sign token", err.Error(), nil)
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&secret, "secret", os.Getenv("BOARD_JWT_SECRET"), "HS256 shared secret")
	f.StringVar(&issuer, "issuer", envOr("BOARD_JWT_ISSUER", "consultboard"), "Token issuer")
	f.StringVar(&subject, "subject", "operator", "Token subject")
	f.StringVar(&name, "name", "", "Display name")
	f.StringSliceVar(&scopes, "scope", []string{jwtx.ScopeBoardRead, jwtx.ScopeBoardWrite}, "Granted scopes")
	f.DurationVar(&ttl, "ttl", jwtx.DefaultAccessTokenTTL, "Token lifetime")
	return cmd
}
