package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

const (
	usersCollection   = "users"
	recordsCollection = "records"
)

// recordDoc is the Firestore document shape. Amount and date are strings so
// the decimal survives exactly and date ordering stays lexicographic.
type recordDoc struct {
	Name     string `firestore:"name"`
	Amount   string `firestore:"amount"`
	Date     string `firestore:"date"`
	Category string `firestore:"category"`
}

func toDoc(rec domain.Record) recordDoc {
	return recordDoc{
		Name:     rec.Name,
		Amount:   rec.Amount.String(),
		Date:     rec.Date.String(),
		Category: rec.Category,
	}
}

// fromDoc is lenient: a malformed stored amount or date degrades to the zero
// value rather than poisoning the whole snapshot. Zero-dated records are
// excluded from period windows downstream.
func fromDoc(id string, d recordDoc) domain.SavedRecord {
	rec := domain.SavedRecord{ID: id}
	rec.Name = d.Name
	rec.Category = d.Category
	if amount, err := decimal.NewFromString(d.Amount); err == nil {
		rec.Amount = amount
	}
	if date, err := civil.ParseDate(d.Date); err == nil {
		rec.Date = date
	}
	return rec
}

// FirestoreStore is the RecordStore backed by a per-user Firestore
// subcollection: users/{uid}/records, ordered by date descending.
type FirestoreStore struct {
	client *firestore.Client
	log    zerolog.Logger
}

// NewFirestoreStore creates a store client for the given project.
// Credentials come from application default credentials.
func NewFirestoreStore(ctx context.Context, projectID string, log zerolog.Logger) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, log: log}, nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) records(userID string) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(recordsCollection)
}

// Create implements RecordStore.
func (s *FirestoreStore) Create(ctx context.Context, userID string, rec domain.Record) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	ref, _, err := s.records(userID).Add(ctx, toDoc(rec))
	if err != nil {
		return "", fmt.Errorf("store: create record: %w", err)
	}
	return ref.ID, nil
}

// Update implements RecordStore with full-document overwrite semantics.
func (s *FirestoreStore) Update(ctx context.Context, userID, id string, rec domain.Record) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if _, err := s.records(userID).Doc(id).Set(ctx, toDoc(rec)); err != nil {
		return fmt.Errorf("store: update record %s: %w", id, err)
	}
	return nil
}

// Delete implements RecordStore.
func (s *FirestoreStore) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	_, err := s.records(userID).Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: delete record %s: %w", id, err)
	}
	return nil
}

// List implements RecordStore.
func (s *FirestoreStore) List(ctx context.Context, userID string) ([]domain.SavedRecord, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	iter := s.records(userID).OrderBy("date", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	records := make([]domain.SavedRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: list records: %w", err)
		}
		var d recordDoc
		if err := doc.DataTo(&d); err != nil {
			s.log.Warn().Err(err).Str("doc", doc.Ref.ID).Msg("Skipping malformed record document")
			continue
		}
		records = append(records, fromDoc(doc.Ref.ID, d))
	}
	return records, nil
}

// Subscribe implements RecordStore using a Firestore query snapshot listener.
// Firestore delivers the full result set on every change, which is exactly
// the replacement contract consumers rely on.
func (s *FirestoreStore) Subscribe(ctx context.Context, userID string, fn func([]domain.SavedRecord)) (func(), error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	subCtx, cancel := context.WithCancel(ctx)
	snaps := s.records(userID).OrderBy("date", firestore.Desc).Snapshots(subCtx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.log.Error().Err(err).Str("user", userID).Msg("Record subscription terminated")
				}
				return
			}

			records := make([]domain.SavedRecord, 0)
			docs := snap.Documents
			for {
				doc, err := docs.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					s.log.Error().Err(err).Str("user", userID).Msg("Reading snapshot documents")
					break
				}
				var d recordDoc
				if err := doc.DataTo(&d); err != nil {
					s.log.Warn().Err(err).Str("doc", doc.Ref.ID).Msg("Skipping malformed record document")
					continue
				}
				records = append(records, fromDoc(doc.Ref.ID, d))
			}

			select {
			case <-subCtx.Done():
				return
			default:
				fn(records)
			}
		}
	}()

	return cancel, nil
}

var _ RecordStore = (*FirestoreStore)(nil)
