package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ipede/album-catalog/internal/application"
	"github.com/ipede/album-catalog/internal/infrastructure/database"
	"github.com/ipede/album-catalog/internal/infrastructure/jwt"
	"github.com/ipede/album-catalog/internal/infrastructure/repository"
	"github.com/ipede/album-catalog/internal/interfaces/http/dto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Token commands"}

	var username string
	var roles []string
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint an access and refresh token with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			codec, err := jwt.NewHMACCodec([]byte(cfg.JWTSecret))
			if err != nil {
				return err
			}
			tokens := jwt.NewTokenService(codec, cfg.JWTAccessDuration, cfg.JWTRefreshDuration, zap.NewNop())

			pair, err := tokens.IssueTokenPair(username, roles)
			if err != nil {
				return err
			}
			return printJSON(pair)
		},
	}
	issueCmd.Flags().StringVar(&username, "username", "", "Token subject")
	issueCmd.Flags().StringSliceVar(&roles, "roles", nil, "Authorities embedded in the access token")
	_ = issueCmd.MarkFlagRequired("username")

	cmd.AddCommand(issueCmd)
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "User administration"}

	var username, password string
	var roles []string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := context.Background()
			db, err := database.NewPostgres(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close()

			users := application.NewUserService(repository.NewUserRepository(db, logger), logger)
			user, err := users.CreateUser(ctx, username, password, roles)
			if err != nil {
				return err
			}
			return printJSON(dto.NewUserResponse(user))
		},
	}
	createCmd.Flags().StringVar(&username, "username", "", "Login name")
	createCmd.Flags().StringVar(&password, "password", "", "Plain text password, stored as a bcrypt hash")
	createCmd.Flags().StringSliceVar(&roles, "roles", nil, "Authorities, defaults to ROLE_USER")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
