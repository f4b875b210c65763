package helpers

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"venue-collections/src/logger"
)

func TestProxyManagerRotation(t *testing.T) {
	pm := NewProxyManager([]string{"10.0.0.1:8080", "", "socks5://10.0.0.2:1080", "ftp://10.0.0.3"}, "",
		logger.NewLoggerWithWriter(io.Discard, "ERROR", "test"))

	if !pm.HasProxies() {
		t.Fatal("HasProxies() = false")
	}
	if got, _ := pm.GetCurrentProxy(); got != "http://10.0.0.1:8080" {
		t.Errorf("GetCurrentProxy() = %q", got)
	}
	pm.RotateProxy()
	if got, _ := pm.GetCurrentProxy(); got != "socks5://10.0.0.2:1080" {
		t.Errorf("GetCurrentProxy() after rotate = %q", got)
	}
	pm.RotateProxy()
	if got, _ := pm.GetCurrentProxy(); got != "http://10.0.0.1:8080" {
		t.Errorf("rotation did not wrap: %q", got)
	}
	if pm.GetUserAgent() != defaultUserAgent {
		t.Errorf("GetUserAgent() = %q", pm.GetUserAgent())
	}
}

// -----------------------------------------------------------------------------

func TestProxyManagerWithoutProxies(t *testing.T) {
	pm := NewProxyManager(nil, "agent/2", logger.NewLoggerWithWriter(io.Discard, "ERROR", "test"))

	if pm.HasProxies() {
		t.Error("HasProxies() = true")
	}
	if got, err := pm.GetCurrentProxy(); got != "" || err != nil {
		t.Errorf("GetCurrentProxy() = %q, %v", got, err)
	}
	pm.RotateProxy()
	if pm.GetUserAgent() != "agent/2" {
		t.Errorf("GetUserAgent() = %q", pm.GetUserAgent())
	}
}

// -----------------------------------------------------------------------------

func TestErrorTypes(t *testing.T) {
	cause := errors.New("connection refused")

	refresh := error(&VenueRefreshError{Venue: "kraken", Position: 2, Cause: cause})
	if !errors.Is(refresh, cause) || !strings.Contains(refresh.Error(), "kraken") {
		t.Errorf("VenueRefreshError = %v", refresh)
	}

	db := error(NewDatabaseError("save", cause))
	var dbErr *DatabaseError
	if !errors.As(db, &dbErr) || !errors.Is(db, cause) {
		t.Errorf("DatabaseError = %v", db)
	}

	malformed := &MalformedSymbolError{Venue: "binance", Position: 1, Index: 4, Symbol: "", Reason: "empty symbol"}
	if !strings.Contains(malformed.Error(), "index 4") {
		t.Errorf("MalformedSymbolError = %v", malformed)
	}
}

// -----------------------------------------------------------------------------

func TestErrorHandlerCounts(t *testing.T) {
	var buf bytes.Buffer
	h := NewErrorHandler(logger.NewLoggerWithWriter(&buf, "DEBUG", "test"))

	if h.Handle(nil, "noop") {
		t.Error("Handle(nil) = true")
	}
	if !h.Handle(errors.New("boom"), "SaveCollections") {
		t.Error("Handle(err) = false")
	}
	if h.ErrorCount != 1 || !strings.Contains(buf.String(), "Error in SaveCollections: boom") {
		t.Errorf("ErrorCount = %d, log = %q", h.ErrorCount, buf.String())
	}
}
