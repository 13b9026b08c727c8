package config

import (
	"strings"
	"testing"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.GRPCAddr != ":50051" {
		t.Errorf("unexpected addresses: %q %q", cfg.HTTPAddr, cfg.GRPCAddr)
	}
	if cfg.JournalQueueSize != 1024 || cfg.JournalWorkers != 2 {
		t.Errorf("unexpected journal settings: %d %d", cfg.JournalQueueSize, cfg.JournalWorkers)
	}
	if cfg.RedistributeSchedule != "@every 5m" || cfg.DisposalSchedule != "@daily" {
		t.Errorf("unexpected schedules: %q %q", cfg.RedistributeSchedule, cfg.DisposalSchedule)
	}
	if cfg.MySQLDSN != "" || cfg.RedisAddr != "" || cfg.KafkaBroker != "" {
		t.Error("expected optional backends to be unset")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"HTTP_ADDR":             ":9090",
		"REDIS_ADDR":            "redis:6379",
		"JOURNAL_WORKERS":       " 4 ",
		"DISPOSAL_SCHEDULE":     "",
		"REDISTRIBUTE_SCHEDULE": "*/10 * * * *",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.RedisAddr != "redis:6379" || cfg.JournalWorkers != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DisposalSchedule != "" {
		t.Errorf("expected disposal schedule disabled, got %q", cfg.DisposalSchedule)
	}
	if cfg.RedistributeSchedule != "*/10 * * * *" {
		t.Errorf("unexpected redistribute schedule %q", cfg.RedistributeSchedule)
	}
}

func TestFromEnv_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"not a number", map[string]string{"JOURNAL_QUEUE_SIZE": "lots"}},
		{"zero workers", map[string]string{"JOURNAL_WORKERS": "0"}},
		{"negative queue", map[string]string{"JOURNAL_QUEUE_SIZE": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromEnv(envMap(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultLayout_BuildNetwork(t *testing.T) {
	network, err := DefaultLayout().BuildNetwork()
	if err != nil {
		t.Fatalf("build network: %v", err)
	}
	if got := len(network.Locations()); got != 4 {
		t.Fatalf("expected 4 locations, got %d", got)
	}
	for _, typ := range []domain.LocationType{domain.General, domain.Cold, domain.Sorting, domain.Disposal} {
		if len(network.OfType(typ)) != 1 {
			t.Errorf("expected one %s location", typ)
		}
	}
}

func TestDecodeLayout(t *testing.T) {
	layout, err := DecodeLayout(strings.NewReader(`{"locations":[
		{"id":10,"type":"Cold","capacity":25.5,"address":"Freezer"},
		{"id":11,"type":"general","capacity":80,"address":"Rack 2"}
	]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	network, err := layout.BuildNetwork()
	if err != nil {
		t.Fatalf("build network: %v", err)
	}
	loc, err := network.Location(10)
	if err != nil {
		t.Fatalf("location 10: %v", err)
	}
	if loc.Type() != domain.Cold || loc.Capacity() != 25.5 || loc.Address() != "Freezer" {
		t.Errorf("unexpected location: %s cap=%v addr=%q", loc.Type(), loc.Capacity(), loc.Address())
	}
}

func TestDecodeLayout_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"locations":[`},
		{"empty", `{"locations":[]}`},
		{"unknown field", `{"locations":[{"id":1,"type":"cold","capacity":1,"address":"x","shelf":3}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeLayout(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildNetwork_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		layout NetworkLayout
	}{
		{"unknown type", NetworkLayout{Locations: []LocationLayout{{ID: 1, Type: "attic", Capacity: 1, Address: "x"}}}},
		{"zero capacity", NetworkLayout{Locations: []LocationLayout{{ID: 1, Type: "cold", Capacity: 0, Address: "x"}}}},
		{"duplicate id", NetworkLayout{Locations: []LocationLayout{
			{ID: 1, Type: "cold", Capacity: 1, Address: "x"},
			{ID: 1, Type: "general", Capacity: 1, Address: "y"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.layout.BuildNetwork(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := (Config{LogLevel: "debug", AppEnv: "development"}).NewLogger(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := (Config{LogLevel: "loud"}).NewLogger(); err == nil {
		t.Error("expected error for unknown level")
	}
}
