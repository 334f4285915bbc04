package sqlite

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dvtbooks/books-api/internal/domain"
	"github.com/dvtbooks/books-api/internal/store"
	"github.com/google/uuid"
)

func TestBookImage_Relink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	author := seedAuthor(t, s, "Some", "One")
	book := seedBook(t, s, author, "9780134190440", "The Go Programming Language")

	if _, err := s.BookImage(ctx, book.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no picture yet, got %v", err)
	}

	first := &domain.Blob{GUID: uuid.New(), ContentType: "image/png", Content: []byte{1, 2, 3}, Width: 196, Height: 300}
	second := &domain.Blob{GUID: uuid.New(), ContentType: "image/jpeg", Content: []byte{4, 5}, BlurHash: "LKO2?U%2Tw=w"}

	for _, blob := range []*domain.Blob{first, second} {
		err := s.InTx(ctx, func(tx store.Tx) error {
			if err := tx.InsertBlob(ctx, blob); err != nil {
				return err
			}
			return tx.SetBookImage(ctx, book.ID, blob.ID)
		})
		if err != nil {
			t.Fatalf("store picture: %v", err)
		}
	}

	got, err := s.BookImage(ctx, book.ID)
	if err != nil {
		t.Fatalf("BookImage: %v", err)
	}
	if got.GUID != second.GUID || got.ContentType != "image/jpeg" || !bytes.Equal(got.Content, []byte{4, 5}) {
		t.Errorf("expected the second picture, got %+v", got)
	}

	refs, err := s.ImagesForBooks(ctx, []int64{book.ID})
	if err != nil {
		t.Fatalf("ImagesForBooks: %v", err)
	}
	if refs[book.ID] == nil || refs[book.ID].BlurHash != "LKO2?U%2Tw=w" {
		t.Errorf("unexpected image ref: %+v", refs[book.ID])
	}

	// The first blob is orphaned, not deleted.
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM blobs`).Scan(&count); err != nil {
		t.Fatalf("count blobs: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 blobs, got %d", count)
	}
}
