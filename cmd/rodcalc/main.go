// Command rodcalc runs leak-off calculations offline.
//
//	rodcalc -in request.json [-pdf report.pdf] [-xlsx result.xlsx] [-config conf/solver.ini]
//	rodcalc -in book.xlsx -xlsx result.xlsx
//
// A JSON request is either a single calculation or {"items": [...]}.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/batch"
	"Rodcalc/internal/calc/importer"
	"Rodcalc/internal/calc/report"
	"Rodcalc/internal/calc/valve"
	"Rodcalc/internal/config"
)

type options struct {
	in, pdf, xlsx, solver string
	workers               int
}

func main() {
	var opt options
	flag.StringVar(&opt.in, "in", "", "request file, .json or .xlsx")
	flag.StringVar(&opt.pdf, "pdf", "", "write a PDF report of the first item")
	flag.StringVar(&opt.xlsx, "xlsx", "", "write the results workbook")
	flag.StringVar(&opt.solver, "config", "conf/solver.ini", "solver settings")
	flag.IntVar(&opt.workers, "workers", 0, "parallel calculations, 0 for one per CPU")
	level := flag.String("log", "warn", "log level")
	flag.Parse()

	logger := config.NewLogger("", *level)
	if opt.in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), opt, os.Stdout, logger); err != nil {
		logger.WithError(err).Fatal("calculation failed")
	}
}

func run(ctx context.Context, opt options, stdout io.Writer, logger *log.Logger) error {
	solver, err := config.LoadSolver(opt.solver, logger)
	if err != nil {
		return err
	}
	network := solver.Network(nil, logger)

	items, err := readItems(opt.in, logger)
	if err != nil {
		return err
	}
	results, err := batch.Run(ctx, network, items, opt.workers)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}

	if opt.pdf != "" {
		if results[0].Output == nil {
			return fmt.Errorf("no report for %s: %s", results[0].Name, results[0].Error)
		}
		var buf bytes.Buffer
		meta := report.Meta{Title: "Valve stem leak-off", Drawing: items[0].Name}
		if err := report.Write(&buf, meta, items[0].Input, *results[0].Output); err != nil {
			return err
		}
		if err := os.WriteFile(opt.pdf, buf.Bytes(), 0o644); err != nil {
			return err
		}
	}
	if opt.xlsx != "" {
		f, err := os.Create(opt.xlsx)
		if err != nil {
			return err
		}
		if err := importer.Export(f, results); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if n := batch.Failed(results); n > 0 {
		logger.WithField("failed", n).Warn("some calculations failed")
	}
	return nil
}

func readItems(path string, logger log.FieldLogger) ([]batch.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		items, bad, err := importer.Read(f)
		if err != nil {
			return nil, err
		}
		for _, b := range bad {
			logger.WithError(b.Err).WithField("row", b.Row).Warn("row skipped")
		}
		return items, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return decodeItems(data, filepath.Base(path))
}

// decodeItems accepts a batch or a single calculation named after the file.
func decodeItems(data []byte, name string) ([]batch.Item, error) {
	var b batch.Input
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if len(b.Items) > 0 {
		return b.Items, nil
	}
	var in valve.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	if len(in.Pressures) == 0 && len(in.LengthsMM) == 0 {
		return nil, errors.New("request holds neither items nor a calculation")
	}
	return []batch.Item{{Name: strings.TrimSuffix(name, filepath.Ext(name)), Input: in}}, nil
}
