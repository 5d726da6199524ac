package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/profile"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the text extracted from a résumé or job description",
	Long:  "Extract and clean the text of a PDF, DOCX, HTML, Markdown or plain-text file, followed by the contact details found in it.",
	RunE:  runExtract,
}

var extractFile string

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "Path to the document (required)")
	extractCmd.MarkFlagRequired("file") //nolint:errcheck

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	doc, err := readDocumentFile(extractFile)
	if err != nil {
		return err
	}
	text, err := ingestion.ExtractText(doc.Data, doc.Type)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", doc.Name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, text)
	fmt.Fprintln(out)

	contact := profile.ExtractContact(text)
	fmt.Fprintf(out, "Name:  %s\n", orNotFound(contact.Name))
	fmt.Fprintf(out, "Email: %s\n", orNotFound(contact.Email))
	fmt.Fprintf(out, "Phone: %s\n", orNotFound(contact.Phone))
	return nil
}

func orNotFound(s string) string {
	if s == "" {
		return "(not found)"
	}
	return s
}
