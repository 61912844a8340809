package pages

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCopyForTranslationCreatesMissingParents(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()
	home := f.createChild(t, f.root, "Home", "home")
	blog := f.createChild(t, home, "Blog", "blog")

	copied, err := f.svc.CopyForTranslation(ctx, blog, f.fr, CopyOptions{CopyParents: true, Alias: true})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if copied.LocaleID != f.fr || copied.TranslationKey != blog.TranslationKey {
		t.Fatalf("copy landed on wrong key/locale: %+v", copied)
	}
	if copied.AliasOfID == nil || *copied.AliasOfID != blog.ID {
		t.Fatalf("expected alias of blog, got %v", copied.AliasOfID)
	}

	frHome, err := f.repo.GetTranslation(ctx, home.TranslationKey, f.fr)
	if err != nil {
		t.Fatalf("expected parent to be copied: %v", err)
	}
	if copied.ParentID == nil || *copied.ParentID != frHome.ID {
		t.Fatalf("expected copy under translated home")
	}
	if frHome.ParentID == nil || *frHome.ParentID != f.root.ID {
		t.Fatalf("expected translated home under the shared root")
	}
	if copied.Live {
		t.Fatalf("expected copy to be a draft without KeepLive")
	}
}

func TestCopyForTranslationIsIdempotent(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()
	home := f.createChild(t, f.root, "Home", "home")

	first, err := f.svc.CopyForTranslation(ctx, home, f.fr, CopyOptions{Alias: true})
	if err != nil {
		t.Fatalf("first copy: %v", err)
	}
	second, err := f.svc.CopyForTranslation(ctx, home, f.fr, CopyOptions{Alias: true})
	if err != nil {
		t.Fatalf("second copy: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected existing row to be returned")
	}
}

func TestCopyForTranslationRequiresParentWithoutCopyParents(t *testing.T) {
	f := newTreeFixture(t)
	home := f.createChild(t, f.root, "Home", "home")
	blog := f.createChild(t, home, "Blog", "blog")

	_, err := f.svc.CopyForTranslation(context.Background(), blog, f.fr, CopyOptions{Alias: true})
	if !errors.Is(err, ErrParentNotTranslated) {
		t.Fatalf("expected ErrParentNotTranslated, got %v", err)
	}
}

func TestCopyForTranslationKeepLiveAndAliasChains(t *testing.T) {
	f := newTreeFixture(t)
	ctx := context.Background()
	home := f.createChild(t, f.root, "Home", "home")

	frHome, err := f.svc.CopyForTranslation(ctx, home, f.fr, CopyOptions{Alias: true, KeepLive: true})
	if err != nil {
		t.Fatalf("copy fr: %v", err)
	}
	if !frHome.Live {
		t.Fatalf("expected KeepLive to carry live state")
	}

	de := uuid.New()
	deHome, err := f.svc.CopyForTranslation(ctx, frHome, de, CopyOptions{Alias: true})
	if err != nil {
		t.Fatalf("copy de: %v", err)
	}
	if deHome.AliasOfID == nil || *deHome.AliasOfID != home.ID {
		t.Fatalf("expected alias of an alias to resolve to the real row")
	}
}

func TestCopyForTranslationRequiresSource(t *testing.T) {
	f := newTreeFixture(t)
	if _, err := f.svc.CopyForTranslation(context.Background(), nil, f.fr, CopyOptions{}); !errors.Is(err, ErrCopySourceRequired) {
		t.Fatalf("expected ErrCopySourceRequired, got %v", err)
	}
}
