package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/croppriceai/internal/chat"
)

var chatLanguage string

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the farming assistant",
	Long: "Ask the farming assistant. With a question the answer is printed and " +
		"the command exits; without one an interactive session starts.\n\n" +
		"In a session, /lang <language> switches the reply language and /quit ends it.\n" +
		"Languages: " + strings.Join(chat.Languages(), ", "),
	RunE: withApp("chat", runChat),
}

func init() {
	chatCmd.Flags().StringVarP(&chatLanguage, "language", "l", "",
		"Reply language (default from config)")
}

func runChat(cmd *cobra.Command, args []string, a *app) error {
	lang := chatLanguage
	if lang == "" {
		lang = a.cfg.Chat.Language
	}
	conv := chat.New(a.client, lang)

	if len(args) > 0 {
		reply, err := conv.Send(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.out.Turn(reply))
		return nil
	}
	return chatSession(cmd, conv, a)
}

func chatSession(cmd *cobra.Command, conv *chat.Conversation, a *app) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, a.out.Chat(conv.Pack(), conv.Turns()))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/lang"):
			p := conv.SetLanguage(strings.TrimSpace(strings.TrimPrefix(line, "/lang")))
			fmt.Fprintln(out, a.out.Chat(p, conv.Turns()))
			continue
		}

		reply, err := conv.Send(cmd.Context(), line)
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			continue
		case err != nil:
			fmt.Fprintln(cmd.ErrOrStderr(), a.errOut.Notice(err.Error()))
			continue
		}
		fmt.Fprintln(out, a.out.Turn(reply))

		if cmd.Context().Err() != nil {
			return nil
		}
	}
}
