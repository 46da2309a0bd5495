package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"postboard/app/repositories"
	"postboard/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// StoreController serves the local collection store in the shape of the
// remote one.
type StoreController struct {
	storeService *services.StoreService
	log          *zap.Logger
}

// NewStoreController creates a new StoreController
func NewStoreController(storeService *services.StoreService, log *zap.Logger) *StoreController {
	if log == nil {
		log = zap.NewNop()
	}
	return &StoreController{storeService: storeService, log: log}
}

// Users handles listing all users
func (sc *StoreController) Users(w http.ResponseWriter, r *http.Request) {
	users, err := sc.storeService.ListUsers()
	if err != nil {
		sc.fail(w, "Failed to fetch users", err)
		return
	}
	sendJSON(w, users)
}

// User handles displaying a single user
func (sc *StoreController) User(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	user, err := sc.storeService.GetUser(id)
	if err != nil {
		sc.fail(w, "User not found", err)
		return
	}
	sendJSON(w, user)
}

// Posts handles listing posts, filtered by the userId query parameter
func (sc *StoreController) Posts(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(w, r, "userId")
	if !ok {
		return
	}
	posts, err := sc.storeService.ListPosts(userID)
	if err != nil {
		sc.fail(w, "Failed to fetch posts", err)
		return
	}
	sendJSON(w, posts)
}

// Post handles displaying a single post
func (sc *StoreController) Post(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}
	post, err := sc.storeService.GetPost(id)
	if err != nil {
		sc.fail(w, "Post not found", err)
		return
	}
	sendJSON(w, post)
}

// Comments handles listing the comments of the post named by postId
func (sc *StoreController) Comments(w http.ResponseWriter, r *http.Request) {
	postID, ok := queryID(w, r, "postId")
	if !ok {
		return
	}
	comments, err := sc.storeService.ListPostComments(postID)
	if err != nil {
		sc.fail(w, "Failed to fetch comments", err)
		return
	}
	sendJSON(w, comments)
}

func (sc *StoreController) fail(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		sendError(w, message, http.StatusNotFound)
		return
	}
	sc.log.Error("store query failed", zap.String("message", message), zap.Error(err))
	sendError(w, message+": "+err.Error(), http.StatusInternalServerError)
}

// queryID reads an optional positive integer query parameter. A malformed
// value is answered with 400 and reported as not ok.
func queryID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		sendError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
