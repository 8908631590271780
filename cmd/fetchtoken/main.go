// Package main is the entry point for the fetchtoken command. It requests a token
// for the configured demo user with the password grant and prints the response.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ipede/authcode-exchange-demo/internal/application"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/config"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/keycloak"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := cli.NewLogger(stderr)
	defer logger.Sync()

	cmd := newRootCmd(logger)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "token request failed: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:               "fetchtoken",
		DisableAutoGenTag: true,
		Short:             "Fetch an access token for the demo user with the password grant",
		Long: `fetchtoken posts the demo user's credentials to the realm token endpoint,
prints the raw token response and the decoded access_token payload.
The provider and credentials are read from the environment or a .env file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fetchToken(cmd.Context(), cmd.OutOrStdout(), logger)
		},
	}
}

func fetchToken(ctx context.Context, out io.Writer, logger *zap.Logger) error {
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		return err
	}

	service := application.NewExchangeService(
		keycloak.NewClient(cfg, logger),
		keycloak.NewAuthorizationURLBuilder(cfg),
		cfg,
		logger,
	)

	result, err := service.FetchPasswordToken(ctx)
	if err != nil {
		return err
	}

	if err := cli.WriteSection(out, "token response", result.TokenResponse); err != nil {
		return err
	}

	if result.TokenResponse.AccessToken() == "" {
		return nil
	}

	fmt.Fprintln(out)
	return cli.WriteSection(out, "decoded access_token payload", result.AccessTokenPayload)
}
