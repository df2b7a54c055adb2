package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/leandb"
)

func newNotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Create, read, page through, update and delete notes",
	}

	cmd.AddCommand(
		newCreateCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExistsCmd(a),
	)

	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withNotes(cmd, func(ctx context.Context, repo *NotesRepository) error {
				note := &Note{Title: title, Body: body}
				note.InternalID = uuid.NewString()

				created, err := repo.Create(ctx, note)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), noteDocument(leandb.NewView(created, leandb.Projection[Note]{})))
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&body, "body", "", "note body")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var fields string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			proj, err := parseFields(fields)
			if err != nil {
				return err
			}

			return a.withNotes(cmd, func(ctx context.Context, repo *NotesRepository) error {
				note, err := repo.FindOne(ctx, leandb.Where(leandb.WhereID[Note](id)), proj)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), noteDocument(leandb.NewView(note, proj)))
			})
		},
	}

	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to print, -_id hides the identifier")

	return cmd
}

type notesPage struct {
	Items   []map[string]any `json:"items"`
	HasMore bool             `json:"hasMore"`
	Next    string           `json:"next,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	var (
		limit  int
		token  string
		sortBy string
		title  string
		fields string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of notes, highest sort value first",
		Long: "Print one page of notes. Pass the printed next token back with --cursor " +
			"to get the following page; the sort field and page size travel with the token.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token != "" && !cmd.Flags().Changed("sort") {
				raw, err := leandb.DecodeRawCursorToken(token)
				if err != nil {
					return fmt.Errorf("invalid cursor: %w", err)
				}

				sortBy = raw.Field
			}

			field, err := leandb.ResolveField(sortBy, _sortableFields...)
			if err != nil {
				return err
			}

			proj, err := parseFields(fields)
			if err != nil {
				return err
			}

			var filter leandb.Filter[Note]
			if title != "" {
				filter = leandb.Where(NoteTitle.Eq(title))
			}

			var pageSize *int
			if cmd.Flags().Changed("limit") {
				pageSize = lo.ToPtr(leandb.NormalizeLimit(limit))
			}

			return a.withNotes(cmd, func(ctx context.Context, repo *NotesRepository) error {
				var page *notesPage

				switch f := field.(type) {
				case leandb.Field[Note, time.Time]:
					page, err = listNotes(ctx, repo, filter, f, token, pageSize, proj)
				case leandb.Field[Note, string]:
					page, err = listNotes(ctx, repo, filter, f, token, pageSize, proj)
				default:
					err = fmt.Errorf("cannot sort by '%s'", field.Name())
				}

				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), page)
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&limit, "limit", leandb.DefaultLimit, fmt.Sprintf("page size, at most %d", leandb.MaxLimit))
	flags.StringVar(&token, "cursor", "", "next token printed by the previous page")
	flags.StringVar(&sortBy, "sort", leandb.UpdatedAtKey, "field to page by: updatedAt, createdAt or title; taken from --cursor when omitted")
	flags.StringVar(&title, "title", "", "only list notes with this title")
	flags.StringVar(&fields, "fields", "", "comma-separated fields to print, -_id hides the identifier")

	return cmd
}

func listNotes[V any](
	ctx context.Context,
	repo *NotesRepository,
	filter leandb.Filter[Note],
	field leandb.Field[Note, V],
	token string,
	pageSize *int,
	proj leandb.Projection[Note],
) (*notesPage, error) {
	cursor, err := leandb.DecodeCursorToken(token, field)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}

	if pageSize != nil {
		cursor = cursor.WithLimit(*pageSize)
	}

	res, err := leandb.PaginateBy(ctx, repo, filter, cursor, proj)
	if err != nil {
		return nil, err
	}

	page := &notesPage{
		Items:   lo.Map(res.Views(), func(v leandb.View[Note], _ int) map[string]any { return noteDocument(v) }),
		HasMore: res.HasMore,
	}

	if res.HasMore {
		if page.Next, err = res.Cursor.Token(); err != nil {
			return nil, err
		}
	}

	return page, nil
}

func newUpdateCmd(a *app) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the title or body of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			var patch leandb.Patch[Note]
			if cmd.Flags().Changed("title") {
				patch = append(patch, NoteTitle.Set(title))
			}
			if cmd.Flags().Changed("body") {
				patch = append(patch, NoteBody.Set(body))
			}

			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: set --title or --body")
			}

			return a.withNotes(cmd, func(ctx context.Context, repo *NotesRepository) error {
				note, err := repo.Update(ctx, leandb.Where(leandb.WhereID[Note](id)), patch)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), noteDocument(leandb.NewView(note, leandb.Projection[Note]{})))
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			return a.withNotes(cmd, func(ctx context.Context, repo *NotesRepository) error {
				note, err := repo.Delete(ctx, leandb.Where(leandb.WhereID[Note](id)))
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), noteDocument(leandb.NewView(note, leandb.Projection[Note]{})))
			})
		},
	}
}

func newExistsCmd(a *app) *cobra.Command {
	var (
		title  string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "exists [id]",
		Short: "Report whether a note with the id or title exists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter leandb.Filter[Note]
			if len(args) == 1 {
				id, err := parseNoteID(args[0])
				if err != nil {
					return err
				}

				filter = filter.And(leandb.WhereID[Note](id))
			}

			if title != "" {
				filter = filter.And(NoteTitle.Eq(title))
			}

			return a.withNotes(cmd, func(ctx context.Context, repo *NotesRepository) error {
				if strict {
					if err := repo.MustExist(ctx, filter); err != nil {
						return err
					}

					return printJSON(cmd.OutOrStdout(), true)
				}

				found, err := repo.Exists(ctx, filter)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), found)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title to look for")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of printing false")

	return cmd
}

func parseNoteID(s string) (string, error) {
	id, err := leandb.ParseUUID(s)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func parseFields(fields string) (leandb.Projection[Note], error) {
	if strings.TrimSpace(fields) == "" {
		return leandb.Projection[Note]{}, nil
	}

	return leandb.ParseProjection[Note](strings.Split(fields, ",")...)
}
