package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studyhub/internal/mirrorserver"
	"studyhub/internal/platform/logging"
)

func newMirrorCmd(flags *globalFlags) *cobra.Command {
	mirror := &cobra.Command{Use: "mirror", Short: "Self-hosted remote document store"}

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger, closer := logging.New(cfg.Log)
			defer func() { _ = closer.Close() }()
			opts := mirrorserver.Options{Addr: cfg.Mirror.Addr, DBPath: cfg.Mirror.DBPath, JWTSecret: cfg.Mirror.JWTSecret}
			if addr != "" {
				opts.Addr = addr
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "mirror listening on %s\n", opts.Addr)
			return mirrorserver.Serve(cmd.Context(), opts, logger)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides mirror.addr)")

	var user string
	var ttl time.Duration
	token := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			signed, err := mirrorserver.MintToken(cfg.Mirror.JWTSecret, user, ttl, time.Now())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	token.Flags().StringVar(&user, "user", "", "user id the token is bound to")
	token.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "lifetime, 0 for no expiry")
	_ = token.MarkFlagRequired("user")

	mirror.AddCommand(serve, token)
	return mirror
}
