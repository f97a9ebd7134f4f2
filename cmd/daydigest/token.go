package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/daydigest/config"
	"github.com/mohammad-safakhou/daydigest/internal/auth"
)

func tokenCMD() *cobra.Command {
	var subject string
	var ttl time.Duration
	var scopes []string
	var token = &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for the digest API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			secret, err := auth.LoadJWTSecret(cfg)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive, got %s", ttl)
			}
			tok, err := auth.SignJWT(subject, secret, ttl, scopes...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	token.Flags().StringVar(&subject, "subject", "", "token subject (required)")
	token.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	token.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeDigest}, "granted scopes")
	_ = token.MarkFlagRequired("subject")
	return token
}
