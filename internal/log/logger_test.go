package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Component: ComponentSync,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	l.Info("Sync pass completed", FieldSynced, 2)

	out := buf.String()
	if !strings.Contains(out, "component=sync") || !strings.Contains(out, "synced=2") {
		t.Errorf("log line = %q", out)
	}
}

func TestNewWithoutComponent(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Handler: slog.NewTextHandler(&buf, nil)}).Info("hello")

	if strings.Contains(buf.String(), "component=") {
		t.Errorf("log line = %q, want no component attribute", buf.String())
	}
}

func TestSetDefaultFeedsForComponent(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetDefault(New(Config{Handler: slog.NewTextHandler(&buf, nil)}))
	ForComponent(ComponentCatalog).Info("Item created")

	out := buf.String()
	if got := strings.Count(out, "component="); got != 1 {
		t.Errorf("log line has %d component attributes, want 1: %q", got, out)
	}
	if !strings.Contains(out, "component=catalog") {
		t.Errorf("log line = %q, want component=catalog", out)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpCreate).
		WithPurchase("p1", "1", 2, 3000).
		WithError(errors.New("boom")).
		WithError(nil)

	if f[FieldOperation] != OpCreate {
		t.Errorf("operation field = %v, want %s", f[FieldOperation], OpCreate)
	}
	if f[FieldPurchaseID] != "p1" || f[FieldQuantity] != 2 || f[FieldAmountCents] != int64(3000) {
		t.Errorf("fields = %v", f)
	}
	if f[FieldError] != "boom" {
		t.Errorf("error field = %v, want boom", f[FieldError])
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice() has %d entries, want %d", got, 2*len(f))
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	l.WithFields(NewFields().WithItem("1", "Chai", 1500)).Info("Item created")

	out := buf.String()
	for _, want := range []string{"item_id=1", "item_name=Chai", "amount_cents=1500"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line = %q, want %s", out, want)
		}
	}
}

func TestFromContext(t *testing.T) {
	l := Discard().With("run", "x")
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("FromContext() did not return the stored logger")
	}
	if got := FromContext(context.Background()); got == nil || got.Logger != slog.Default() {
		t.Error("FromContext() without logger should fall back to the default logger")
	}
}
