// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nlpodyssey/policynet"
	"github.com/nlpodyssey/policynet/weights"
)

// architectureKey is the safetensors metadata key holding the JSON
// architecture.
const architectureKey = "policynet.architecture"

var errUsage = errors.New("usage: policyweights layout|export|import [flags]")

func main() {
	log.SetFlags(0)
	log.SetPrefix("policyweights: ")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	archPath := fs.String("arch", "", "architecture JSON file (default MOBA)")

	switch args[0] {
	case "layout":
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		arch, err := loadArchitecture(*archPath)
		if err != nil {
			return err
		}
		return printLayout(stdout, arch)
	case "export":
		in := fs.String("weights", "", "raw weight blob to read")
		out := fs.String("out", "", "safetensors file to write")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *in == "" || *out == "" {
			return errors.New("export: -weights and -out are required")
		}
		arch, err := loadArchitecture(*archPath)
		if err != nil {
			return err
		}
		return export(arch, *in, *out)
	case "import":
		in := fs.String("in", "", "safetensors file to read")
		out := fs.String("out", "", "raw weight blob to write")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *in == "" || *out == "" {
			return errors.New("import: -in and -out are required")
		}
		arch, err := loadArchitecture(*archPath)
		if err != nil {
			return err
		}
		return importSafeTensors(arch, *in, *out)
	default:
		return errUsage
	}
}

func loadArchitecture(path string) (policynet.Architecture, error) {
	if path == "" {
		return policynet.MOBA(), nil
	}
	return policynet.LoadArchitecture(path)
}

func printLayout(w io.Writer, arch policynet.Architecture) error {
	bw := bufio.NewWriter(w)
	for _, e := range arch.Layout().Entries() {
		fmt.Fprintf(bw, "%-24s %-16v [%d, %d)\n", e.Name, e.Shape, e.Begin, e.End)
	}
	n := arch.Layout().Size()
	fmt.Fprintf(bw, "total %d float32 values, %d bytes\n", n, n*4)
	return bw.Flush()
}

func export(arch policynet.Architecture, in, out string) error {
	store, err := arch.LoadWeights(in)
	if err != nil {
		return err
	}
	archJSON, err := json.Marshal(arch)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	err = store.WriteSafeTensors(f, map[string]string{architectureKey: string(archJSON)})
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %q: %w", out, err)
	}
	return f.Close()
}

func importSafeTensors(arch policynet.Architecture, in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	store, metadata, err := weights.ReadSafeTensors(bufio.NewReader(f), arch.Layout())
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", in, err)
	}
	if s, ok := metadata[architectureKey]; ok {
		var stored policynet.Architecture
		if err = json.Unmarshal([]byte(s), &stored); err != nil {
			return fmt.Errorf("invalid architecture metadata in %q: %w", in, err)
		}
		if stored != arch {
			return fmt.Errorf("%q was exported for a different architecture: %s", in, s)
		}
	}
	return weights.Save(out, store.Data())
}
