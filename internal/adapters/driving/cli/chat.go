package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about your documents",
	Long: `Create chats and send messages. Each message retrieves the most relevant
document chunks and passes them to the LLM as context.`,
}

var chatNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a chat",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChatNew,
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats",
	Args:  cobra.NoArgs,
	RunE:  runChatList,
}

var chatShowCmd = &cobra.Command{
	Use:   "show [chat-id]",
	Short: "Show a chat and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatShow,
}

var chatSendCmd = &cobra.Command{
	Use:   "send [chat-id] [message]",
	Short: "Send a message and print the answer",
	Long: `Send a message to a chat. Use "new" as the chat id to start a fresh chat.

Examples:
  docrag chat send new "What is the refund policy?"
  docrag chat send 3f2a... "And for digital goods?" --sources 3`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChatSend,
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete [chat-id]",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatDelete,
}

var chatStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chat statistics",
	Args:  cobra.NoArgs,
	RunE:  runChatStats,
}

var (
	sendNoRetrieval bool
	sendMaxSources  int
	sendThreshold   float64
)

func init() {
	chatSendCmd.Flags().BoolVar(&sendNoRetrieval, "no-retrieval", false, "answer without document context")
	chatSendCmd.Flags().IntVarP(&sendMaxSources, "sources", "n", domain.DefaultMaxSources, "maximum sources (1-10)")
	chatSendCmd.Flags().Float64VarP(&sendThreshold, "threshold", "t", domain.DefaultScoreThreshold,
		"minimum similarity score (0-1)")

	chatCmd.AddCommand(chatNewCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatShowCmd)
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	chatCmd.AddCommand(chatStatsCmd)
	rootCmd.AddCommand(chatCmd)
}

func requireChat() (string, error) {
	if chatService == nil {
		return "", errors.New("chat service not configured")
	}
	return owner()
}

func runChatNew(cmd *cobra.Command, args []string) error {
	ownerID, err := requireChat()
	if err != nil {
		return err
	}
	var title string
	if len(args) == 1 {
		title = args[0]
	}
	chat, err := chatService.CreateChat(cmd.Context(), ownerID, title)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, chat)
	}
	cmd.Printf("Created chat %s\n", chat.ID)
	return nil
}

func runChatList(cmd *cobra.Command, _ []string) error {
	ownerID, err := requireChat()
	if err != nil {
		return err
	}
	chats, err := chatService.ListChats(cmd.Context(), ownerID)
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, chats)
	}
	if len(chats) == 0 {
		cmd.Println("No chats yet.")
		return nil
	}
	for i := range chats {
		c := &chats[i]
		cmd.Printf("  %s  %s\n", c.ID, c.Title)
		cmd.Printf("    %d messages, updated %s\n", c.MessageCount, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runChatShow(cmd *cobra.Command, args []string) error {
	ownerID, err := requireChat()
	if err != nil {
		return err
	}
	chat, err := chatService.GetChat(cmd.Context(), ownerID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get chat: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, chat)
	}

	title := chat.Chat.Title
	if title == "" {
		title = domain.DefaultChatTitle
	}
	cmd.Println(title)
	cmd.Println(strings.Repeat("=", len([]rune(title))))
	for i := range chat.Messages {
		m := &chat.Messages[i]
		cmd.Printf("\n[%s] %s\n", m.Role, m.CreatedAt.Format("15:04"))
		cmd.Println(m.Content)
		printSources(cmd, m.Sources)
	}
	return nil
}

func runChatSend(cmd *cobra.Command, args []string) error {
	ownerID, err := requireChat()
	if err != nil {
		return err
	}

	chatID := args[0]
	if chatID == "new" {
		chat, err := chatService.CreateChat(cmd.Context(), ownerID, "")
		if err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}
		chatID = chat.ID
	}

	req := domain.NewSendMessageRequest(chatID, ownerID, strings.Join(args[1:], " "))
	req.UseRetrieval = !sendNoRetrieval
	req.MaxSources = sendMaxSources
	req.ScoreThreshold = sendThreshold

	res, err := chatService.SendMessage(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, res)
	}

	cmd.Println(res.AssistantMessage.Content)
	printSources(cmd, res.AssistantMessage.Sources)
	if args[0] == "new" {
		cmd.Printf("\nChat: %s\n", chatID)
	}
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}
	cmd.Println("\nSources:")
	for i, s := range sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, s.Title, s.Score)
	}
}

func runChatDelete(cmd *cobra.Command, args []string) error {
	ownerID, err := requireChat()
	if err != nil {
		return err
	}
	if err := chatService.DeleteChat(cmd.Context(), ownerID, args[0]); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	cmd.Printf("Deleted chat %s\n", args[0])
	return nil
}

func runChatStats(cmd *cobra.Command, _ []string) error {
	ownerID, err := requireChat()
	if err != nil {
		return err
	}
	stats, err := chatService.Stats(cmd.Context(), ownerID)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	if jsonFlag {
		return printJSON(cmd, stats)
	}
	cmd.Printf("Chats:              %d\n", stats.TotalChats)
	cmd.Printf("Messages:           %d\n", stats.TotalMessages)
	cmd.Printf("Questions asked:    %d\n", stats.UserQueries)
	cmd.Printf("Answers given:      %d\n", stats.AssistantMessages)
	return nil
}
