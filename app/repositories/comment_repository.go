package repositories

import (
	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

func idOfComment(c *models.Comment) int { return c.ID }

// Save stores a comment with the post ID in its key for efficient listing
func (r *BadgerCommentRepository) Save(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if comment.ID == 0 {
			id, err := getNextID(txn, CommentSeqKey)
			if err != nil {
				return err
			}
			comment.ID = id
		} else {
			if err := bumpID(txn, CommentSeqKey, comment.ID); err != nil {
				return err
			}
			oldKey, _, err := findKey(txn, []byte(CommentKeyPrefix), comment.ID, idOfComment)
			if err != nil && err != ErrNotFound {
				return err
			}
			if oldKey != nil {
				if err := txn.Delete(oldKey); err != nil {
					return err
				}
			}
		}
		if err := comment.Validate(); err != nil {
			return err
		}

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(commentKey(comment.PostID, comment.ID), data)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment *models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		_, comment, err = findKey(txn, []byte(CommentKeyPrefix), id, idOfComment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return list[models.Comment](r.db, commentsOfPostPrefix(postID))
}
