package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-treesync/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if fields == nil {
		fields = map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "treesync.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	// Ensure WithContext/WithFields do not panic.
	ctx := context.Background()
	logger = logger.WithContext(ctx)
	logger = logger.(interfaces.FieldsLogger).WithFields(map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := ModuleLogger(provider, synctreeModule)

	if len(provider.requested) != 1 || provider.requested[0] != synctreeModule {
		t.Fatalf("expected module %s, got %v", synctreeModule, provider.requested)
	}

	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}

	if got, ok := rec.fields[0]["module"]; !ok || got != synctreeModule {
		t.Fatalf("expected module field %s, got %v", synctreeModule, rec.fields[0]["module"])
	}

	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
	if rec.fields[0]["module"] != rootModule {
		t.Fatalf("expected module field %s, got %v", rootModule, rec.fields[0]["module"])
	}
}

func TestModuleLoggersRequestNamespaces(t *testing.T) {
	cases := []struct {
		name   string
		build  func(interfaces.LoggerProvider) interfaces.Logger
		module string
	}{
		{"synctree", SynctreeLogger, synctreeModule},
		{"fallback", FallbackLogger, fallbackModule},
		{"pages", PagesLogger, pagesModule},
		{"locales", LocalesLogger, localesModule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &stubProvider{logger: &recordingLogger{}}
			_ = tc.build(provider)
			if len(provider.requested) == 0 || provider.requested[0] != tc.module {
				t.Fatalf("expected %s module request, got %v", tc.module, provider.requested)
			}
		})
	}
}

func TestWithSyncContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithSyncContext(rec, " es-MX ", "", "copy")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldLocale] != "es-MX" {
		t.Fatalf("expected trimmed locale, got %v", fields[fieldLocale])
	}
	if _, ok := fields[fieldTranslationKey]; ok {
		t.Fatalf("expected empty translation key to be skipped, got %v", fields)
	}
	if fields[fieldSyncAction] != "copy" {
		t.Fatalf("expected sync action copy, got %v", fields[fieldSyncAction])
	}
}

func TestCommandLoggerScopesModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}
	_ = CommandLogger(provider, " synctree ")

	if len(provider.requested) != 1 || provider.requested[0] != "treesync.commands.synctree" {
		t.Fatalf("unexpected module request %v", provider.requested)
	}
	last := rec.fields[len(rec.fields)-1]
	if last["component"] != "command" || last["command_module"] != "synctree" {
		t.Fatalf("expected command fields, got %v", last)
	}
}

func TestContextFieldsMergeAndCopy(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"run_id": "a", "locale": "fr"})
	ctx = ContextWithFields(ctx, map[string]any{"run_id": "b"})

	fields := ContextFields(ctx)
	if fields["run_id"] != "b" || fields["locale"] != "fr" {
		t.Fatalf("expected merged fields, got %v", fields)
	}
	fields["locale"] = "es"
	if ContextFields(ctx)["locale"] != "fr" {
		t.Fatalf("expected callers to receive a copy")
	}
	if ContextFields(context.Background()) != nil {
		t.Fatalf("expected nil fields on a bare context")
	}
}
