package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dyluth/retro/internal/config"
	"github.com/dyluth/retro/internal/form"
	"github.com/dyluth/retro/internal/printer"
	"github.com/dyluth/retro/pkg/channel"
	"github.com/dyluth/retro/pkg/retro"
)

var (
	submitBody     string
	submitCategory string
	editBody       string
	editCategory   string
	editAssignee   int
)

var ideaCmd = &cobra.Command{
	Use:   "idea",
	Short: "Submit, edit or delete ideas in the session",
}

var ideaSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new idea",
	Long: `Submit a new idea to the session. The host assigns the id and
broadcasts the committed idea to every connected client.

Examples:
  retro idea submit --body "Daily standups run too long" --category sad
  retro idea submit --body "Great release this sprint" --category happy`,
	RunE: runIdeaSubmit,
}

var ideaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an idea",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdeaDelete,
}

var ideaEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an existing idea",
	Long: `Edit an idea through the same form flow the UI uses: the body is
validated (non-empty after trimming, at most 255 characters) and, when
this user is the facilitator, a live-edit preview is broadcast before
the commit.

Examples:
  retro idea edit 7 --body "Do standups async"
  retro idea edit 7 --body "Ship the fix" --assignee 3`,
	RunE: runIdeaEdit,
}

func init() {
	ideaSubmitCmd.Flags().StringVarP(&submitBody, "body", "b", "", "Idea body (required)")
	ideaSubmitCmd.Flags().StringVarP(&submitCategory, "category", "c", "", "Idea category")
	ideaSubmitCmd.MarkFlagRequired("body")

	ideaEditCmd.Flags().StringVarP(&editBody, "body", "b", "", "New idea body (required)")
	ideaEditCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category (outside the action-items stage)")
	ideaEditCmd.Flags().IntVarP(&editAssignee, "assignee", "a", 0, "Assignee user id (action-items stage only)")
	ideaEditCmd.MarkFlagRequired("body")

	ideaCmd.AddCommand(ideaSubmitCmd)
	ideaCmd.AddCommand(ideaDeleteCmd)
	ideaCmd.AddCommand(ideaEditCmd)
	rootCmd.AddCommand(ideaCmd)
}

// sessionClient loads the config and connects a channel client.
func sessionClient() (*config.RetroConfig, *channel.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	client, err := channel.NewClient(cfg.RedisOptions(), cfg.Session, cfg.PushTimeoutDuration())
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// awaitPush blocks until the push resolves, translating the outcome into
// a CLI result. The push itself never blocks; this wait is the CLI's own.
func awaitPush(push *channel.Push, action string) error {
	done := make(chan error, 1)
	push.Receive(channel.StatusOK, func(json.RawMessage) {
		done <- nil
	})
	push.Receive(channel.StatusError, func(payload json.RawMessage) {
		var reason struct {
			Reason string `json:"reason"`
		}
		json.Unmarshal(payload, &reason)
		done <- printer.Error(
			fmt.Sprintf("%s rejected", action),
			fmt.Sprintf("The session host rejected the request: %s", reason.Reason),
			nil,
		)
	})
	push.Receive(channel.StatusTimeout, func(json.RawMessage) {
		done <- printer.Error(
			fmt.Sprintf("%s timed out", action),
			"No reply arrived from the session host.",
			[]string{"Check that 'retro host' is running for this session"},
		)
	})
	return <-done
}

func runIdeaSubmit(cmd *cobra.Command, args []string) error {
	cfg, client, err := sessionClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := retro.ValidateIdeaBody(submitBody); err != nil {
		return printer.Error(
			"invalid idea body",
			err.Error(),
			[]string{fmt.Sprintf("Bodies must be non-empty and at most %d characters", retro.MaxIdeaBodyLength)},
		)
	}

	store := retro.NewStore()
	push := store.Run(retro.SubmitIdea(retro.Idea{
		Body:     submitBody,
		Category: submitCategory,
		UserID:   cfg.User.ID,
	}), client)

	if err := awaitPush(push, "idea submission"); err != nil {
		return err
	}
	printer.Success("idea submitted\n")
	return nil
}

func runIdeaDelete(cmd *cobra.Command, args []string) error {
	ideaID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid idea id %q: %w", args[0], err)
	}

	_, client, err := sessionClient()
	if err != nil {
		return err
	}
	defer client.Close()

	store := retro.NewStore()
	push := store.Run(retro.SubmitIdeaDeletion(ideaID), client)

	if err := awaitPush(push, "idea deletion"); err != nil {
		return err
	}
	printer.Success("idea %d deleted\n", ideaID)
	return nil
}

func runIdeaEdit(cmd *cobra.Command, args []string) error {
	ideaID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid idea id %q: %w", args[0], err)
	}

	cfg, client, err := sessionClient()
	if err != nil {
		return err
	}
	defer client.Close()

	editor := form.NewEditor(
		retro.Idea{ID: ideaID},
		cfg.CurrentStage(),
		cfg.CurrentUser(),
		cfg.Collaborators(),
		client,
	)

	editor.OnBodyChange(editBody)
	if editCategory != "" {
		editor.OnCategoryChange(editCategory)
	}
	if editAssignee != 0 {
		editor.OnAssigneeChange(editAssignee)
	}

	push := editor.Submit()
	if push == nil {
		editor.Cancel()
		return printer.Error(
			"invalid idea body",
			fmt.Sprintf("The edited body failed validation: %v", retro.ValidateIdeaBody(editBody)),
			[]string{fmt.Sprintf("Bodies must be non-empty and at most %d characters", retro.MaxIdeaBodyLength)},
		)
	}

	if err := awaitPush(push, "idea edit"); err != nil {
		return err
	}
	printer.Success("idea %d edited\n", ideaID)
	return nil
}
