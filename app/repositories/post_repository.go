package repositories

import (
	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB. Posts are
// keyed by owner so listing a user's posts is a single prefix scan.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

func idOfPost(p *models.Post) int { return p.ID }

// Save stores a post, assigning the next ID when none is set. A post that
// changed owner is moved to its new key.
func (r *BadgerPostRepository) Save(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if post.ID == 0 {
			id, err := getNextID(txn, PostSeqKey)
			if err != nil {
				return err
			}
			post.ID = id
		} else {
			if err := bumpID(txn, PostSeqKey, post.ID); err != nil {
				return err
			}
			oldKey, _, err := findKey(txn, []byte(PostKeyPrefix), post.ID, idOfPost)
			if err != nil && err != ErrNotFound {
				return err
			}
			if oldKey != nil {
				if err := txn.Delete(oldKey); err != nil {
					return err
				}
			}
		}
		if err := post.Validate(); err != nil {
			return err
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.UserID, post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		_, post, err = findKey(txn, []byte(PostKeyPrefix), id, idOfPost)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List retrieves every post, grouped by owner
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	return list[models.Post](r.db, []byte(PostKeyPrefix))
}

// ListByUser retrieves the posts owned by userID in ID order
func (r *BadgerPostRepository) ListByUser(userID int) ([]*models.Post, error) {
	return list[models.Post](r.db, postsOfUserPrefix(userID))
}
