package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrEthical07/goGuard/client"
	"github.com/spf13/cobra"
)

type signInFlags struct {
	phone     string
	password  string
	redisAddr string
}

func signInCmd(g *globalFlags) *cobra.Command {
	f := &signInFlags{}

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in against the configured backend and print the session",
		Long: `Sign in against GOGUARD_BASE_URL with the given credentials, then print
the action result and the resulting session as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Environment, g.logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, cleanup, err := newAuthority(cfg, logger, f.redisAddr)
			if err != nil {
				return err
			}
			defer cleanup()

			select {
			case <-a.Ready():
			case <-time.After(cfg.Monitor.Interval):
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}

			res := client.NewAuthAPI(a).SignIn(cmd.Context(), f.phone, f.password)
			s := a.Session()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(map[string]any{
				"result": res,
				"session": map[string]string{
					"status":  s.Status.String(),
					"role":    s.Role,
					"user_id": s.UserID,
				},
			}); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("sign-in failed: %s", res.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.password, "password", "", "Password")
	cmd.Flags().StringVar(&f.redisAddr, "redis", "", "Redis address for the fallback tier")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
