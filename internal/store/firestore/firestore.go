// Package firestore はCloud Firestoreを使った取引ストアの実装を提供する。
//
// 取引は users/{userID}/transactions/{id} に保存する。
// IDはFirestoreの自動採番に任せる。
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cloudfirestore "cloud.google.com/go/firestore"
	"github.com/nao1215/txgate/internal/store"
	"google.golang.org/api/iterator"
)

const (
	// usersCollection はユーザードキュメントを置くルートコレクション名。
	usersCollection = "users"
	// transactionsCollection はユーザー配下の取引サブコレクション名。
	transactionsCollection = "transactions"
)

var _ store.TransactionStore = (*Store)(nil)

// transactionDoc はFirestoreに保存するドキュメントの形。
type transactionDoc struct {
	Description string    `firestore:"description"`
	Amount      float64   `firestore:"amount"`
	Type        string    `firestore:"type"`
	Timestamp   time.Time `firestore:"timestamp"`
}

// Store はFirestoreに取引を保存する store.TransactionStore の実装。
type Store struct {
	client *cloudfirestore.Client
	// root はルートコレクション名。テストで分離するために差し替える。
	root string
}

// Open はプロジェクトIDを指定してFirestoreクライアントを生成する。
// 認証情報はApplication Default Credentialsから、
// FIRESTORE_EMULATOR_HOSTが設定されていればエミュレータへ接続する。
func Open(ctx context.Context, projectID string) (*Store, error) {
	client, err := cloudfirestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("Firestoreクライアントの生成に失敗: %w", err)
	}
	return New(client), nil
}

// New は既存のクライアントからストアを生成する。
func New(client *cloudfirestore.Client) *Store {
	return &Store{client: client, root: usersCollection}
}

// collection は所有者の取引サブコレクションを返す。
func (s *Store) collection(userID string) (*cloudfirestore.CollectionRef, error) {
	if strings.Contains(userID, "/") {
		return nil, fmt.Errorf("所有者ID %q: %w", userID, store.ErrInvalidID)
	}
	return s.client.Collection(s.root).Doc(userID).Collection(transactionsCollection), nil
}

// ListTransactions は所有者の取引をtimestampの降順で返す。
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]store.Transaction, error) {
	coll, err := s.collection(userID)
	if err != nil {
		return nil, err
	}

	iter := coll.OrderBy("timestamp", cloudfirestore.Desc).Documents(ctx)
	defer iter.Stop()

	txs := []store.Transaction{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("取引一覧の取得に失敗: %w", err)
		}

		var doc transactionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("取引 %s の読み取りに失敗: %w", snap.Ref.ID, err)
		}
		txs = append(txs, store.Transaction{
			ID:          snap.Ref.ID,
			Description: doc.Description,
			Amount:      doc.Amount,
			Type:        doc.Type,
			Timestamp:   doc.Timestamp.UTC(),
		})
	}
	return txs, nil
}

// AddTransaction は取引ドキュメントを追加し、自動採番されたIDを返す。
func (s *Store) AddTransaction(ctx context.Context, userID string, tx store.Transaction) (string, error) {
	coll, err := s.collection(userID)
	if err != nil {
		return "", err
	}

	ref, _, err := coll.Add(ctx, transactionDoc{
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Timestamp:   tx.Timestamp.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("取引の追加に失敗: %w", err)
	}
	return ref.ID, nil
}

// DeleteTransaction は取引ドキュメントを削除する。
// Firestoreは存在しないドキュメントの削除を成功として扱うため、事前確認はしない。
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	if strings.Contains(id, "/") {
		return fmt.Errorf("取引ID %q: %w", id, store.ErrInvalidID)
	}
	coll, err := s.collection(userID)
	if err != nil {
		return err
	}

	if _, err := coll.Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("取引の削除に失敗: %w", err)
	}
	return nil
}

// Close はFirestoreクライアントを閉じる。
func (s *Store) Close() error {
	return s.client.Close()
}
