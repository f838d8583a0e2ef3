package main

import (
	"geo-news/internal/dispatcher"

	"github.com/spf13/cobra"
)

func scrapeCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <category-url>",
		Short: "Scrape new articles from a category page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := newSession(cmd, s)
			sess.d.Page().SetValue(dispatcher.ScrapeURL, args[0])
			if err := sess.click(cmd, dispatcher.ScrapeButton); err != nil {
				return err
			}
			return sess.print(cmd, s)
		},
	}
}

func fetchCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <article-url>",
		Short: "Show a stored article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := newSession(cmd, s)
			sess.d.Page().SetValue(dispatcher.FetchURL, args[0])
			if err := sess.click(cmd, dispatcher.FetchButton); err != nil {
				return err
			}
			return sess.print(cmd, s)
		},
	}
}

func summarizeCmd(s settings) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <article-url>",
		Short: "Fetch a stored article and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := newSession(cmd, s)
			sess.d.Page().SetValue(dispatcher.FetchURL, args[0])
			if err := sess.click(cmd, dispatcher.FetchButton); err != nil {
				return err
			}
			if err := sess.click(cmd, dispatcher.SummarizeButton); err != nil {
				return err
			}
			return sess.print(cmd, s)
		},
	}
}
