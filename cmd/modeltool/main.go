// modeltool is a CLI utility for working with Diesel engine .model files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RAIDModding/raid-model-tool/internal/config"
	"github.com/RAIDModding/raid-model-tool/internal/logger"
	"github.com/RAIDModding/raid-model-tool/pkg/diesel"
	"github.com/RAIDModding/raid-model-tool/pkg/gltfexport"
	"github.com/RAIDModding/raid-model-tool/pkg/hashname"
)

var cfg *config.Config

func main() {
	config.ParseFlags()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "list", "ls":
		err = cmdList(args)
	case "dump":
		err = cmdDump(args)
	case "resave":
		err = cmdResave(args)
	case "export", "x":
		err = cmdExport(args)
	case "hash":
		cmdHash(args)
	case "lookup":
		err = cmdLookup(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modeltool - Diesel engine model file utility

Usage:
  modeltool [flags] <command> [options]

Commands:
  info <file.model>                 Show header, section counts and meshes
  list <file.model> [kind]          List sections (optionally of one kind)
  dump <file.model> <id>            Dump one decoded section
  resave <in.model> <out.model>     Load and write a model back
  export <file.model> [out]         Export meshes to glTF
  hash <string>...                  Print the hash of each string
  lookup <hash>...                  Find hashes in the loaded hashlists
  config [path]                     Write the effective config (default: user config dir)

Flags:
  -config <path>      Config file (default ./modeltool.yaml or user config dir)
  -hashlist <path>    Hashlist file, repeatable
  -format glb|gltf    Export format
  -o <dir>            Export output directory
  -keep-hashtable     Keep hash tables unchanged on resave
  -debug              Enable debug logging
  -log <path>         Also write logs to a file

Examples:
  modeltool info units/payday2/characters/ene_cop_1/ene_cop_1.model
  modeltool -hashlist hashlist.txt list ene_cop_1.model Model
  modeltool -format gltf export ene_cop_1.model
  modeltool hash units/payday2/characters/ene_cop_1/ene_cop_1`)
}

// loadIndex merges the configured hashlists. Missing files are skipped so the
// default path does not have to exist.
func loadIndex() (*hashname.Index, error) {
	var paths []string
	for _, p := range cfg.Hashlist.Paths {
		if _, err := os.Stat(p); err != nil {
			logger.Log.Debug("hashlist not found", zap.String("path", p))
			continue
		}
		paths = append(paths, p)
	}
	idx, err := hashname.LoadIndexFiles(paths...)
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("hashlists loaded", zap.Int("files", len(paths)), zap.Int("names", idx.Len()))
	return idx, nil
}

func openModel(path string) (*diesel.Document, error) {
	idx, err := loadIndex()
	if err != nil {
		return nil, err
	}
	return diesel.Open(path, diesel.WithIndex(idx), diesel.WithLogger(logger.For("diesel")))
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: modeltool info <file.model>")
	}

	doc, err := openModel(args[0])
	if err != nil {
		return err
	}

	var total uint64
	kindCount := make(map[string]int)
	for _, h := range doc.Sections {
		total += uint64(h.Size)
		kindCount[diesel.KindOf(h.Tag).String()]++
	}

	fmt.Printf("Model:    %s\n", args[0])
	fmt.Printf("Sections: %d\n", doc.Len())
	fmt.Printf("Bodies:   %.2f KB\n", float64(total)/1024)
	fmt.Printf("Trailing: %d bytes\n", len(doc.Trailing))
	fmt.Println()
	fmt.Println("Sections by kind:")

	type kindStat struct {
		kind  string
		count int
	}
	var stats []kindStat
	for kind, count := range kindCount {
		stats = append(stats, kindStat{kind, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].kind < stats[j].kind
	})
	for _, s := range stats {
		fmt.Printf("  %-32s %d\n", s.kind, s.count)
	}

	meshes, err := doc.Meshes()
	if err != nil {
		return err
	}
	if len(meshes) > 0 {
		fmt.Println()
		fmt.Println("Meshes:")
		for _, m := range meshes {
			min, max := m.Bounds()
			fmt.Printf("  %-40s verts=%-6d faces=%-6d uvsets=%d bounds=%v..%v radius=%.3f\n",
				m.Name.Display(), len(m.Positions), len(m.Faces), len(m.UVs), min, max, m.Radius())
		}
	}

	if len(doc.Warnings) > 0 {
		fmt.Println()
		fmt.Printf("Warnings (%d):\n", len(doc.Warnings))
		for _, w := range doc.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N sections (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: modeltool list <file.model> [kind]")
	}

	doc, err := openModel(fs.Arg(0))
	if err != nil {
		return err
	}

	kind := ""
	if fs.NArg() > 1 {
		kind = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, h := range doc.Sections {
		k := diesel.KindOf(h.Tag)
		if kind != "" && strings.ToLower(k.String()) != kind {
			continue
		}
		s, _ := doc.Section(h.ID)
		name := ""
		if n, ok := diesel.NameOf(s); ok {
			name = n.Display()
		}
		fmt.Printf("%6d  %08x  %-32s %8d  %s\n", h.ID, h.Tag, k, h.Size, name)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if kind != "" {
		fmt.Fprintf(os.Stderr, "\n(%d sections matched)\n", count)
	}
	return nil
}

func cmdDump(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: modeltool dump <file.model> <id>")
	}
	id, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return errors.Wrapf(err, "section id %q", args[1])
	}

	doc, err := openModel(args[0])
	if err != nil {
		return err
	}
	s, ok := doc.Section(uint32(id))
	if !ok {
		return errors.Errorf("section %d not found", id)
	}

	dumper := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	dumper.Dump(s)
	return nil
}

func cmdResave(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: modeltool resave <in.model> <out.model>")
	}

	doc, err := openModel(args[0])
	if err != nil {
		return err
	}
	loadWarnings := len(doc.Warnings)

	var opts []diesel.SaveOption
	if !cfg.Resave.RebuildHashTable {
		opts = append(opts, diesel.KeepHashTable())
	}
	if err := doc.SaveFile(args[1], opts...); err != nil {
		return errors.Wrapf(err, "saving %s", args[1])
	}

	logger.Log.Info("model saved",
		zap.String("path", args[1]),
		zap.Int("sections", doc.Len()),
		zap.Int("warnings", len(doc.Warnings)-loadWarnings))
	return nil
}

func cmdExport(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: modeltool export <file.model> [out]")
	}

	doc, err := openModel(args[0])
	if err != nil {
		return err
	}

	out := ""
	if len(args) > 1 {
		out = args[1]
	}
	out, binary := exportPath(args[0], out, cfg.Export)

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}
	}
	if err := gltfexport.ExportFile(doc, out, binary); err != nil {
		return err
	}

	logger.Log.Info("model exported", zap.String("path", out), zap.Bool("binary", binary))
	return nil
}

// exportPath picks the output file for an export. An explicit out wins and
// its extension decides the format. Otherwise the input name is reused in
// the configured output directory.
func exportPath(in, out string, exp config.ExportConfig) (string, bool) {
	if out != "" {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".glb":
			return out, true
		case ".gltf":
			return out, false
		}
		return out, exp.Binary
	}

	ext := ".gltf"
	if exp.Binary {
		ext = ".glb"
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ext
	dir := exp.OutputDir
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, base), exp.Binary
}

func cmdHash(args []string) {
	for _, s := range args {
		fmt.Printf("%016x  %s\n", hashname.Hash(s), s)
	}
}

func cmdLookup(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: modeltool lookup <hash>...")
	}

	idx, err := loadIndex()
	if err != nil {
		return err
	}

	for _, a := range args {
		h, err := parseHash(a)
		if err != nil {
			return err
		}
		if s, ok := idx.Lookup(h); ok {
			fmt.Printf("%016x  %s\n", h, s)
		} else {
			fmt.Printf("%016x  (unknown)\n", h)
		}
	}
	return nil
}

// parseHash accepts a hash in hex, with or without a 0x prefix.
func parseHash(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	h, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "hash %q", s)
	}
	return h, nil
}

func cmdConfig(args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return errors.Wrapf(err, "writing config %s", args[0])
		}
		logger.Sugar.Infof("config written to %s", args[0])
		return nil
	}

	if err := cfg.Save(); err != nil {
		return errors.Wrap(err, "writing config")
	}
	logger.Sugar.Infof("config written to %s", filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}
