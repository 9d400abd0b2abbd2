package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

func newArticlesCommand(ctx *commandContext) *cobra.Command {
	articlesCmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"artigos"},
		Short:   "List and manage articles",
	}
	articlesCmd.AddCommand(newArticlesListCommand(ctx))
	articlesCmd.AddCommand(newArticlesShowCommand(ctx))
	articlesCmd.AddCommand(newArticlesCreateCommand(ctx))
	articlesCmd.AddCommand(newArticlesUpdateCommand(ctx))
	articlesCmd.AddCommand(newArticlesDeleteCommand(ctx))
	articlesCmd.AddCommand(newArticlesUploadPDFCommand(ctx))
	articlesCmd.AddCommand(newArticlesDownloadPDFCommand(ctx))
	return articlesCmd
}

func newArticlesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list EDITION_ID",
		Short: "List the articles of an edition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articles, err := ctx.apiClient().ListArticlesOf(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No articles")
				return nil
			}
			printArticles(cmd, articles)
			return nil
		},
	}
}

func printArticles(cmd *cobra.Command, articles []catalog.Article) {
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, []string{a.ID, a.Title, strings.Join(a.AuthorNames(), "; "), a.Pages, yesNo(a.PDFPath != "")})
	}
	printTable(cmd.OutOrStdout(), []string{"ID", "Title", "Authors", "Pages", "PDF"}, rows, nil)
}

func newArticlesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print an article as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.apiClient().GetArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, a)
		},
	}
}

type articleFlags struct {
	title    string
	authors  []string
	abstract string
	keywords []string
	pages    string
	doi      string
}

func (f *articleFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Article title")
	cmd.Flags().StringArrayVar(&f.authors, "author", nil, "Author name (repeatable, in order)")
	cmd.Flags().StringVar(&f.abstract, "abstract", "", "Abstract")
	cmd.Flags().StringArrayVar(&f.keywords, "keyword", nil, "Keyword (repeatable)")
	cmd.Flags().StringVar(&f.pages, "pages", "", "Page range")
	cmd.Flags().StringVar(&f.doi, "doi", "", "DOI")
}

// apply copies the flags the user set onto a.
func (f *articleFlags) apply(cmd *cobra.Command, a *catalog.Article) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		a.Title = f.title
	}
	if flags.Changed("author") {
		a.Authors = catalog.AuthorsFromNames(f.authors)
	}
	if flags.Changed("abstract") {
		a.Abstract = f.abstract
	}
	if flags.Changed("keyword") {
		a.Keywords = f.keywords
	}
	if flags.Changed("pages") {
		a.Pages = f.pages
	}
	if flags.Changed("doi") {
		a.DOI = f.doi
	}
}

func newArticlesCreateCommand(ctx *commandContext) *cobra.Command {
	var fields articleFlags
	var editionID, pdfPath string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an article, optionally with its PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := catalog.Article{EditionID: editionID}
			fields.apply(cmd, &a)

			ctrl := ctx.controller(cmd)
			if pdfPath == "" {
				return reported(ctrl.CreateArticle(cmd.Context(), a))
			}
			f, err := os.Open(pdfPath)
			if err != nil {
				return err
			}
			defer f.Close()
			return reported(ctrl.CreateArticleWithPDF(cmd.Context(), a, filepath.Base(pdfPath), f))
		},
	}
	cmd.Flags().StringVar(&editionID, "edition", "", "Owning edition ID")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "PDF file to attach")
	fields.bind(cmd)
	_ = cmd.MarkFlagRequired("edition")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newArticlesUpdateCommand(ctx *commandContext) *cobra.Command {
	var fields articleFlags
	var editionID string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := ctx.apiClient()
			a, err := api.GetArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			current, err := api.GetEdition(cmd.Context(), a.EditionID)
			if err != nil {
				return err
			}
			fields.apply(cmd, &a)
			if cmd.Flags().Changed("edition") {
				a.EditionID = editionID
			}

			ctrl := ctx.controller(cmd)
			if err := focus(cmd.Context(), ctrl, current); err != nil {
				return err
			}
			return reported(ctrl.UpdateArticle(cmd.Context(), a))
		},
	}
	cmd.Flags().StringVar(&editionID, "edition", "", "Move the article to this edition")
	fields.bind(cmd)
	return cmd
}

func newArticlesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.apiClient().GetArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return reported(ctx.controller(cmd).DeleteArticle(cmd.Context(), a))
		},
	}
}

func newArticlesUploadPDFCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-pdf ID FILE",
		Short: "Attach a PDF to an article",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.apiClient().GetArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			return reported(ctx.controller(cmd).UploadPDF(cmd.Context(), a, filepath.Base(args[1]), f))
		},
	}
}

func newArticlesDownloadPDFCommand(ctx *commandContext) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download-pdf ID",
		Short: "Download an article's PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := out
			if path == "" {
				path = args[0] + ".pdf"
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := ctx.apiClient().DownloadPDF(cmd.Context(), args[0], f); err != nil {
				f.Close()
				os.Remove(path)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Destination file (default ID.pdf)")
	return cmd
}
