package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emsi-platform/studyhub/internal/config"
	"github.com/emsi-platform/studyhub/internal/extract"
	"github.com/emsi-platform/studyhub/internal/llm"
	"github.com/emsi-platform/studyhub/internal/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text the assistant would read from a local document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		text, err := extract.Text(filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send one prompt to the configured model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		model, err := llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.Timeout)
		defer cancel()
		reply, err := model.Complete(ctx, []models.ChatMessage{
			{Role: models.RoleUser, Content: strings.Join(args, " ")},
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
		return err
	},
}
