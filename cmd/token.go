package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rogeecn/fbads-mcp/internal/credential"
	"github.com/rogeecn/fbads-mcp/internal/oauth"
	"github.com/spf13/cobra"
)

type tokenRefresher interface {
	Refresh(ctx context.Context, scope string) (*oauth.Result, error)
}

var newTokenRefresher = func(a *app) tokenRefresher {
	return a.refresher
}

var refreshScope string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Token 管理",
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示 Token 文件与脱敏后的 Token",
	Args:  cobra.NoArgs,
	RunE:  runTokenShow,
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "手动保存 Token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenSet,
}

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "通过浏览器授权刷新 Token",
	Args:  cobra.NoArgs,
	RunE:  runTokenRefresh,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenShowCmd)
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenRefreshCmd)
	tokenRefreshCmd.Flags().StringVar(&refreshScope, "scope", oauth.DefaultScope, "请求的权限范围 (逗号分隔)")
}

func runTokenShow(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Token file: %s\n", a.credentials.Path())

	token, err := a.credentials.Get()
	if errors.Is(err, credential.ErrUnavailable) {
		fmt.Fprintln(cmd.OutOrStdout(), "Token: (not set)")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token: %s\n", credential.Mask(token))
	return nil
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if err := a.credentials.Set(args[0]); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", a.credentials.Path())
	return nil
}

func runTokenRefresh(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	result, err := newTokenRefresher(a).Refresh(cmd.Context(), refreshScope)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode refresh result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))

	if result.Status != oauth.StatusSuccess {
		return fmt.Errorf("refresh token: %s: %s", result.Status, result.Message)
	}
	return nil
}
