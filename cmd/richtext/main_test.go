package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestRunConvertNormalizesStdin(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"convert"}, strings.NewReader("Title\n=====\n\n+ item"), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "# Title\n\n- item\n"; out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestRunOutlineReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("# Guide\n\ntext\n\n## Install"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), []string{"outline", "-in", path}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "- [Guide](#guide)\n  - [Install](#install)\n"; out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestRunConvertRejectsUnknownFormat(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"convert", "-format", "pdf"}, strings.NewReader("x"), &out)
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunNormalizeImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(1, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dot.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	err := run(context.Background(), []string{"normalize-image", "-file", path, "-markdown", "-alt", "dot"}, nil, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "![dot](data:image/jpeg;base64,") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunLanguages(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"languages"}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !slices.Contains(lines, "go") || !slices.Contains(lines, "typescript") || !slices.Contains(lines, "plain") {
		t.Fatalf("expected canonical languages, got %v", lines)
	}
	if !slices.IsSorted(lines) {
		t.Fatalf("expected sorted output, got %v", lines)
	}

	out.Reset()
	if err := run(context.Background(), []string{"languages", "-resolve", "TS"}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run resolve: %v", err)
	}
	if out.String() != "typescript\n" {
		t.Fatalf("expected typescript, got %q", out.String())
	}

	err := run(context.Background(), []string{"languages", "-resolve", "cobol-9000"}, strings.NewReader(""), &out)
	if !errors.Is(err, errUnknownLanguage) {
		t.Fatalf("expected errUnknownLanguage, got %v", err)
	}
}

func TestRunRequiresSubcommand(t *testing.T) {
	if err := run(context.Background(), nil, nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), []string{"publish"}, nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for unknown command, got %v", err)
	}
}
