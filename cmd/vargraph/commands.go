// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/vargraph/archive"
	"github.com/AleutianAI/vargraph/gfa"
	"github.com/AleutianAI/vargraph/graph"
)

var (
	rootCmd = &cobra.Command{
		Use:   "vargraph",
		Short: "Inspect, convert, and archive variation graphs",
		Long: `vargraph works with bidirected sequence graphs in GFA 1.0 format:
print summary statistics, validate files, normalize them to a canonical
serialization, and keep immutable snapshots in a local archive.`,
	}

	statsCmd = &cobra.Command{
		Use:   "stats [graph.gfa]",
		Short: "Print summary statistics for a graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	validateCmd = &cobra.Command{
		Use:   "validate [graph.gfa]",
		Short: "Check that a GFA file parses into a consistent graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	viewCmd = &cobra.Command{
		Use:   "view [graph.gfa]",
		Short: "Rewrite a graph as canonical GFA on stdout",
		Long: `Parses the input and re-serializes it deterministically: segments in
ID order, links by canonical endpoints, paths by name. Two equivalent
graphs always produce identical output, which makes diffs meaningful.`,
		Args: cobra.ExactArgs(1),
		RunE: runView,
	}

	archiveCmd = &cobra.Command{
		Use:   "archive",
		Short: "Manage the local snapshot archive",
	}
	snapshotName   string
	archiveSaveCmd = &cobra.Command{
		Use:   "save [graph.gfa]",
		Short: "Store a graph as a new immutable snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveSave,
	}
	archiveListCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE:  runArchiveList,
	}
	archiveExportCmd = &cobra.Command{
		Use:   "export [snapshot-id] [out.gfa]",
		Short: "Write a stored snapshot back out as GFA",
		Args:  cobra.ExactArgs(2),
		RunE:  runArchiveExport,
	}
	archiveDeleteCmd = &cobra.Command{
		Use:   "delete [snapshot-id]",
		Short: "Remove a snapshot from the archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveDelete,
	}
)

func init() {
	archiveSaveCmd.Flags().StringVar(&snapshotName, "name", "",
		"snapshot name (defaults to the input file name)")
	archiveCmd.AddCommand(archiveSaveCmd, archiveListCmd, archiveExportCmd, archiveDeleteCmd)
	rootCmd.AddCommand(statsCmd, validateCmd, viewCmd, archiveCmd)
}

func loadGraphFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := gfa.ReadGraph(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}

func openArchive() (*archive.Store, error) {
	path, err := expandHome(config.Archive.Path)
	if err != nil {
		return nil, err
	}
	cfg := archive.DefaultConfig()
	cfg.Path = path
	cfg.Logger = logger.Logger
	return archive.Open(cfg)
}

func runStats(cmd *cobra.Command, args []string) error {
	g, err := loadGraphFile(args[0])
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "nodes\t%d\n", g.NodeCount())
	fmt.Fprintf(w, "edges\t%d\n", g.EdgeCount())
	fmt.Fprintf(w, "paths\t%d\n", g.PathCount())
	fmt.Fprintf(w, "total length\t%d\n", g.TotalSequenceLength())
	fmt.Fprintf(w, "node id range\t%d..%d\n", g.MinNodeID(), g.MaxNodeID())
	return w.Flush()
}

func runValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadGraphFile(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", args[0])
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	g, err := loadGraphFile(args[0])
	if err != nil {
		return err
	}
	return gfa.Write(cmd.OutOrStdout(), g)
}

func runArchiveSave(cmd *cobra.Command, args []string) error {
	g, err := loadGraphFile(args[0])
	if err != nil {
		return err
	}
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	name := snapshotName
	if name == "" {
		name = args[0]
	}
	snap, err := store.Save(cmd.Context(), name, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved snapshot %s (%q: %d nodes, %d edges, %d paths)\n",
		snap.ID, snap.Name, snap.Nodes, snap.Edges, snap.Paths)
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "archive is empty")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tNODES\tEDGES\tPATHS\tLENGTH")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			s.ID, s.Name, s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Nodes, s.Edges, s.Paths, s.Length)
	}
	return w.Flush()
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	f, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[1], err)
	}
	defer f.Close()
	if err := gfa.Write(f, g); err != nil {
		return err
	}
	return f.Close()
}

func runArchiveDelete(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted snapshot %s\n", args[0])
	return nil
}
