package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gogpu/draft/docstore"
	"github.com/gogpu/draft/snapshot"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive commands",
}

var archivePutCmd = &cobra.Command{
	Use:   "put <archive> <document>",
	Short: "Store a document as a new revision",
	Args:  cobra.ExactArgs(2),
	RunE:  runArchivePut,
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <archive> <id> <output>",
	Short: "Write a revision to a document file",
	Args:  cobra.ExactArgs(3),
	RunE:  runArchiveGet,
}

var archiveListCmd = &cobra.Command{
	Use:   "list <archive> [id]",
	Short: "List documents, or the revisions of one document",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runArchiveList,
}

var archiveRmCmd = &cobra.Command{
	Use:   "rm <archive> <id>",
	Short: "Delete a document and its revisions",
	Args:  cobra.ExactArgs(2),
	RunE:  runArchiveRm,
}

var (
	archiveID   string
	archiveName string
	archiveRev  int
)

func init() {
	archivePutCmd.Flags().StringVar(&archiveID, "id", "", "Existing document id (default: create a new document)")
	archivePutCmd.Flags().StringVar(&archiveName, "name", "", "Name of a new document (default: file name)")
	archiveGetCmd.Flags().IntVar(&archiveRev, "rev", 0, "Revision number (default: latest)")

	archiveCmd.AddCommand(archivePutCmd)
	archiveCmd.AddCommand(archiveGetCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveRmCmd)
}

func withArchive(path string, fn func(ctx context.Context, a *docstore.Archive) error) error {
	a, err := docstore.Open(path)
	if err != nil {
		return err
	}
	if err := fn(context.Background(), a); err != nil {
		a.Close()
		return err
	}
	return a.Close()
}

func runArchivePut(cmd *cobra.Command, args []string) error {
	snap, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	return withArchive(args[0], func(ctx context.Context, a *docstore.Archive) error {
		var id uuid.UUID
		if archiveID != "" {
			if id, err = uuid.Parse(archiveID); err != nil {
				return fmt.Errorf("invalid document id: %w", err)
			}
		} else {
			name := archiveName
			if name == "" {
				name = args[1]
			}
			if id, err = a.Create(ctx, name); err != nil {
				return err
			}
		}
		rev, err := a.Put(ctx, id, snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s rev %d %s\n", id, rev.Number, rev.Digest)
		return nil
	})
}

func runArchiveGet(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}
	return withArchive(args[0], func(ctx context.Context, a *docstore.Archive) error {
		snap, rev, err := a.Get(ctx, id, archiveRev)
		if err != nil {
			return err
		}
		if _, err := snapshot.Decode(snap); err != nil {
			return err
		}
		if err := os.WriteFile(args[2], snap, 0o644); err != nil {
			return fmt.Errorf("writing document: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote rev %d to %s\n", rev.Number, args[2])
		return nil
	})
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	return withArchive(args[0], func(ctx context.Context, a *docstore.Archive) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()

		if len(args) == 1 {
			docs, err := a.Documents(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "ID\tNAME\tREVISIONS\tCREATED")
			for _, d := range docs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.ID, d.Name, d.Revisions, d.Created.Format(time.RFC3339))
			}
			return nil
		}

		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid document id: %w", err)
		}
		revs, err := a.Revisions(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "REV\tGENERATION\tENTITIES\tDIGEST\tCREATED")
		for _, r := range revs {
			fmt.Fprintf(w, "%d\t%d\t%d\t%.16s\t%s\n", r.Number, r.Generation, r.Entities, r.Digest, r.Created.Format(time.RFC3339))
		}
		return nil
	})
}

func runArchiveRm(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}
	return withArchive(args[0], func(ctx context.Context, a *docstore.Archive) error {
		return a.Delete(ctx, id)
	})
}
