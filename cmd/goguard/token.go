package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/token"
	"github.com/spf13/cobra"
)

// signingKeyEnv holds the HS256 key shared by the token command and the
// development backend.
const signingKeyEnv = "GOGUARD_DEV_SIGNING_KEY"

const defaultDevSigningKey = "goguard-development-key"

func devSigningKey() []byte {
	if k := os.Getenv(signingKeyEnv); k != "" {
		return []byte(k)
	}
	return []byte(defaultDevSigningKey)
}

func tokenCmd() *cobra.Command {
	var (
		role    string
		userID  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token",
		Long: `Mint an HS256 session token carrying role, user_id and exp claims.

The key is read from ` + signingKeyEnv + `. goGuard never verifies the
signature, so the token is only as trustworthy as the backend that issued it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !permission.IsKnownRole(role) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: role %q is not a known role\n", role)
			}
			issuer, err := token.NewIssuer(devSigningKey(), ttl)
			if err != nil {
				return err
			}
			raw, err := issuer.Issue(token.Claims{Role: role, UserID: userID, Subject: subject}, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", permission.RoleUser, "Role claim")
	cmd.Flags().StringVar(&userID, "user-id", "", "user_id claim")
	cmd.Flags().StringVar(&subject, "subject", "", "sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}

type decodedToken struct {
	Role      string    `json:"role"`
	UserID    string    `json:"user_id,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [token]",
		Short: "Decode a session token without verifying it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := tokenArg(cmd, args)
			if err != nil {
				return err
			}
			codec := token.NewCodec()
			claims, err := codec.Decode(raw)
			if err != nil {
				return err
			}
			out := decodedToken{
				Role:      claims.RoleOrDefault(),
				UserID:    claims.UserID,
				Subject:   claims.Subject,
				ExpiresAt: claims.Expiry().UTC(),
				Expired:   codec.IsExpired(claims, time.Now()),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

// tokenArg returns the positional token or, without one, the first line of
// stdin.
func tokenArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", errors.New("no token given")
	}
	return strings.TrimSpace(line), nil
}
