package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

const orderText = `Order ID: # 206-8888888-1111111
Purchase date:	Fri, 9 May 2025, 12:00 BST
Ship to

Steven Steve
123 Amazon Lane
United Kingdom

Amazon Basics Pencil (HB)
ASIN: B09MXXXXXX
SKU: AM-AMZN-XXXX
1 £2.99`

func TestRun_Stdin(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(orderText), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}

	var order models.OrderRecord
	if err := json.Unmarshal(stdout.Bytes(), &order); err != nil {
		t.Fatalf("expected JSON output, got %v", err)
	}
	if order.OrderID != "206-8888888-1111111" || len(order.Items) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestRun_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "order.txt")
	if err := os.WriteFile(path, []byte(orderText), 0o600); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-strict", path}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}
}

func TestRun_StrictRejectsIncompleteRecord(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-strict"}, strings.NewReader("Order ID: 206-8888888-1111111"), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "customer.name") {
		t.Fatalf("expected field errors on stderr, got %s", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no output, got %s", stdout.String())
	}
}

func TestRun_BadArguments(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"a", "b"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if code := run([]string{"-nope"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if code := run([]string{filepath.Join(t.TempDir(), "missing.txt")}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}
