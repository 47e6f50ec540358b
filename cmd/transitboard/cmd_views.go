package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"transitboard/internal/board"
)

func newBoardCmd(out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "board <stop-id>",
		Short: "Print the approaching buses of one stop and the connection listing, then exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stopID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid stop id %q", args[0])
			}

			app, err := setup(cmd, errOut)
			if err != nil {
				return err
			}
			return app.newBoard(strings.NewReader(""), out).Once(out, stopID)
		},
	}
}

func newConnectionsCmd(out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "Print the stop connection listing, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, errOut)
			if err != nil {
				return err
			}
			return board.NewPresenter(app.store, app.metrics).RenderConnections(out)
		},
	}
}
