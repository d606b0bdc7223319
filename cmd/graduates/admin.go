package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/graduates/internal/domain/model"
)

func newInstallCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Grant graduate capabilities and create the encryption key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				if err := a.lifecycle.Install(ctx); err != nil {
					return err
				}
				printf(cmd, "installed\n")
				return nil
			})
		},
	}
}

func newUninstallCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Delete API security settings and revoke graduate capabilities",
		Long: `Delete the API security settings and revoke the graduate capabilities.
The stored API key cannot be recovered afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				if err := a.lifecycle.Uninstall(ctx); err != nil {
					return err
				}
				printf(cmd, "uninstalled\n")
				return nil
			})
		},
	}
}

func newAPIKeyCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the API key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate a new API key, invalidating the previous one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				key, err := a.credentials.Regenerate(ctx)
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", key)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				key, err := a.credentials.Credential(ctx)
				if err != nil {
					return err
				}
				if key == "" {
					return fmt.Errorf("no API key stored; run %q", "graduates apikey generate")
				}
				printf(cmd, "%s\n", key)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				if err := a.credentials.SaveCredential(ctx, ""); err != nil {
					return err
				}
				printf(cmd, "API key cleared\n")
				return nil
			})
		},
	})

	return cmd
}

func newSecurityCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Turn API key enforcement on or off",
	}

	setEnabled := func(enabled bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				if err := a.credentials.SetEnabled(ctx, enabled); err != nil {
					return err
				}
				printf(cmd, "API security %s\n", onOff(enabled))
				return nil
			})
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Require " + model.CredentialHeaderName + " on every API request",
		RunE:  setEnabled(true),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Serve the API without a key and clear the stored key",
		RunE:  setEnabled(false),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether API security is enabled and a key is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, st, func(ctx context.Context, a *app) error {
				snap, err := a.secrets.Snapshot(ctx)
				if err != nil {
					return err
				}
				printf(cmd, "enabled: %t\nkey stored: %t\nencryption key: %t\n",
					snap.Enabled, snap.HasCredential(), snap.EncryptionKey != nil)
				return nil
			})
		},
	})

	return cmd
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
