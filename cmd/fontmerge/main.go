// seehuhn.de/go/fontmerge - consolidate fonts of re-embedded PDF pages
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Fontmerge combines several font files of the same font into one font
// file.
//
// Usage:
//
//	fontmerge [options] font1 font2 ...
//
// All files are treated as versions of the font named by the first file.
// Fonts which cannot be merged with the first font are written to separate
// files, named by appending "-2", "-3", ... to the output file name.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"seehuhn.de/go/fontmerge"
	"seehuhn.de/go/fontmerge/cff"
)

func main() {
	output := flag.String("o", "", "output file (default: standard output)")
	tolerance := flag.Int("tolerance", 2, "number of differing charstring bytes tolerated")
	verbose := flag.Bool("v", false, "report fonts which cannot be merged")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] font1 font2 ...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *output == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "refusing to write a font file to a terminal, use -o")
		os.Exit(1)
	}

	opt := &fontmerge.Options{OutlineTolerance: *tolerance}
	if *tolerance == 0 {
		opt.OutlineTolerance = -1
	}
	if *verbose {
		opt.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	fonts, err := mergeFiles(flag.Args(), opt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, f := range fonts {
		data, err := f.Bytes()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", f.Name(), err)
			os.Exit(1)
		}
		if *output == "" {
			if i > 0 {
				fmt.Fprintf(os.Stderr, "%s: not written, cannot merge into %s\n",
					f.Name(), fonts[0].Name())
				continue
			}
			_, err = os.Stdout.Write(data)
		} else {
			err = os.WriteFile(outputName(*output, i), data, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%s: %d fonts merged\n", f.Name(), f.NumSources())
	}
}

func mergeFiles(fileNames []string, opt *fontmerge.Options) ([]*fontmerge.Font, error) {
	s := fontmerge.NewSession(opt)
	fontName := strings.TrimSuffix(filepath.Base(fileNames[0]), filepath.Ext(fileNames[0]))
	for _, fname := range fileNames {
		data, err := os.ReadFile(fname)
		if err != nil {
			return nil, err
		}
		src, err := newSource(fontName, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
		_, err = s.Add(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
	}
	return s.Fonts(), nil
}

// newSource describes a complete font file as a font occurrence which uses
// all codes of the font.
func newSource(fontName string, data []byte) (*fontmerge.Source, error) {
	format, err := detectFormat(data)
	if err != nil {
		return nil, err
	}
	src := &fontmerge.Source{
		BaseFont:  fontName,
		Format:    format,
		FirstChar: 0,
		LastChar:  255,
		Data:      data,
	}
	if format == fontmerge.TrueType {
		src.Encoding = &fontmerge.Encoding{BaseName: "WinAnsiEncoding"}
	}
	return src, nil
}

var errUnknownFormat = errors.New("unknown font format")

func detectFormat(data []byte) (fontmerge.Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0x80, 0x01}), bytes.HasPrefix(data, []byte("%!")):
		return fontmerge.Type1, nil
	case bytes.HasPrefix(data, []byte{0, 1, 0, 0}), bytes.HasPrefix(data, []byte("true")):
		return fontmerge.TrueType, nil
	case len(data) > 4 && data[0] == 1:
		info, err := cff.Parse(data)
		if err != nil {
			return 0, err
		}
		if info.IsCID {
			return fontmerge.CFFCID, nil
		}
		return fontmerge.CFFSimple, nil
	}
	return 0, errUnknownFormat
}

func outputName(base string, i int) string {
	if i == 0 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), i+1, ext)
}
