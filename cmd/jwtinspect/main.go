// Package main is the entry point for the jwtinspect command. It prints the
// payload of a JWT and checks its aud and iss claims. Signatures are not verified.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/ipede/authcode-exchange-demo/internal/domain/errors"
	"github.com/ipede/authcode-exchange-demo/internal/infrastructure/jwt"
	"github.com/ipede/authcode-exchange-demo/internal/interfaces/cli"
)

type inspectOptions struct {
	token       string
	expectedAud string
	expectedIss string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case apperrors.IsValidationMismatch(err):
		// reasons are already on stdout
		return 1
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func newRootCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:               "jwtinspect",
		DisableAutoGenTag: true,
		Short:             "Decode and validate a JWT payload",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return inspect(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.token, "token", "", "JWT to decode")
	cmd.Flags().StringVar(&opts.expectedAud, "expected-aud", "", "Audience the aud claim must include")
	cmd.Flags().StringVar(&opts.expectedIss, "expected-iss", "", "Issuer the iss claim must equal")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func inspect(out io.Writer, opts *inspectOptions) error {
	claims, err := jwt.DecodePayload(opts.token)
	if err != nil {
		return err
	}

	if err := cli.WriteJSON(out, claims); err != nil {
		return err
	}

	ok, reasons := jwt.ValidateBasicClaims(claims, opts.expectedAud, opts.expectedIss)
	if ok {
		fmt.Fprintln(out, "\nclaims validation: OK")
		return nil
	}

	fmt.Fprintln(out, "\nclaims validation: NG")
	for _, reason := range reasons {
		fmt.Fprintf(out, "- %s\n", reason)
	}
	return apperrors.NewValidationMismatchError("claims validation failed", strings.Join(reasons, "; "))
}
