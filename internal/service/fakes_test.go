package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wcircle.app/watchcircle/internal/model"
)

type followEdgeKey struct {
	follower uuid.UUID
	followee uuid.UUID
}

type fakeFollowRepo struct {
	edges        map[followEdgeKey]*model.Follow
	tasteMatches map[followEdgeKey]*model.TasteMatch
	following    []uuid.UUID
	followed     []uuid.UUID
	upsertErr    error
	deleteErr    error
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{
		edges:        make(map[followEdgeKey]*model.Follow),
		tasteMatches: make(map[followEdgeKey]*model.TasteMatch),
	}
}

func (r *fakeFollowRepo) Upsert(ctx context.Context, follow *model.Follow) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	cp := *follow
	r.edges[followEdgeKey{follow.FollowerID, follow.FolloweeID}] = &cp
	return nil
}

func (r *fakeFollowRepo) Delete(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.edges, followEdgeKey{followerID, followeeID})
	return nil
}

func (r *fakeFollowRepo) Find(ctx context.Context, followerID, followeeID uuid.UUID) (*model.Follow, error) {
	edge, ok := r.edges[followEdgeKey{followerID, followeeID}]
	if !ok {
		return nil, nil
	}
	cp := *edge
	return &cp, nil
}

func (r *fakeFollowRepo) Accept(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if edge, ok := r.edges[followEdgeKey{followerID, followeeID}]; ok {
		edge.Status = model.FollowStatusAccepted
	}
	return nil
}

func (r *fakeFollowRepo) FollowingIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	return r.following, nil
}

func (r *fakeFollowRepo) FollowedIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	return r.followed, nil
}

func (r *fakeFollowRepo) ListRequests(ctx context.Context, followeeID uuid.UUID) ([]model.Follow, error) {
	var out []model.Follow
	for _, edge := range r.edges {
		if edge.FolloweeID == followeeID && edge.Status == model.FollowStatusPending {
			out = append(out, *edge)
		}
	}
	return out, nil
}

func (r *fakeFollowRepo) CountFollowers(ctx context.Context, followeeID uuid.UUID) (int64, error) {
	var count int64
	for _, edge := range r.edges {
		if edge.FolloweeID == followeeID && edge.Status == model.FollowStatusAccepted {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) CountFollowersAmong(ctx context.Context, candidateID uuid.UUID, userIDs []uuid.UUID) (int64, error) {
	var count int64
	for _, id := range userIDs {
		if edge, ok := r.edges[followEdgeKey{id, candidateID}]; ok && edge.Status == model.FollowStatusAccepted {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) GetTasteMatch(ctx context.Context, userID, otherID uuid.UUID) (*model.TasteMatch, error) {
	match, ok := r.tasteMatches[followEdgeKey{userID, otherID}]
	if !ok {
		return nil, nil
	}
	cp := *match
	return &cp, nil
}

func (r *fakeFollowRepo) UpsertTasteMatch(ctx context.Context, match *model.TasteMatch) error {
	cp := *match
	r.tasteMatches[followEdgeKey{match.UserID, match.OtherID}] = &cp
	return nil
}

func (r *fakeFollowRepo) DeleteTasteMatch(ctx context.Context, userID, otherID uuid.UUID) error {
	delete(r.tasteMatches, followEdgeKey{userID, otherID})
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	if u, ok := r.users[id]; ok {
		u.AvatarURL = &avatarURL
	}
	return nil
}

func (r *fakeUserRepo) SetPrivacy(ctx context.Context, id uuid.UUID, isPrivate bool) error {
	if u, ok := r.users[id]; ok {
		u.IsPrivate = isPrivate
	}
	return nil
}

func (r *fakeUserRepo) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	return nil
}

func (r *fakeUserRepo) ListRecent(ctx context.Context, limit int) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeActivityRepo struct {
	feed    []model.Activity
	created []model.Activity
	byID    map[uuid.UUID]*model.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{byID: make(map[uuid.UUID]*model.Activity)}
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *model.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	r.created = append(r.created, *activity)
	cp := *activity
	r.byID[activity.ID] = &cp
	return nil
}

func (r *fakeActivityRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	if a, ok := r.byID[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeActivityRepo) ListForFeed(ctx context.Context, userIDs []uuid.UUID, before *time.Time, limit int) ([]model.Activity, error) {
	out := r.feed
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeActivityRepo) ListByUserAndMedia(ctx context.Context, userID uuid.UUID, mediaID string) ([]model.Activity, error) {
	return nil, nil
}

type fakeRatingRepo struct {
	// current holds the stored value per (user, media); Toggle applies
	// toggle-off semantics against it.
	current   map[string]string
	loved     map[uuid.UUID][]string
	byMedia   []model.Rating
	viewer    *model.Rating
	toggleErr error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{current: make(map[string]string), loved: make(map[uuid.UUID][]string)}
}

func ratingKey(userID uuid.UUID, mediaID string) string {
	return userID.String() + ":" + mediaID
}

func (r *fakeRatingRepo) Toggle(ctx context.Context, rating *model.Rating) (string, string, error) {
	if r.toggleErr != nil {
		return "", "", r.toggleErr
	}
	key := ratingKey(rating.UserID, rating.MediaID)
	old := r.current[key]
	if old == rating.Value {
		delete(r.current, key)
		return old, "", nil
	}
	r.current[key] = rating.Value
	return old, rating.Value, nil
}

func (r *fakeRatingRepo) Upsert(ctx context.Context, rating *model.Rating) error {
	r.current[ratingKey(rating.UserID, rating.MediaID)] = rating.Value
	return nil
}

func (r *fakeRatingRepo) Get(ctx context.Context, userID uuid.UUID, mediaID string) (*model.Rating, error) {
	return r.viewer, nil
}

func (r *fakeRatingRepo) ListByMediaForUsers(ctx context.Context, mediaID string, userIDs []uuid.UUID) ([]model.Rating, error) {
	return r.byMedia, nil
}

func (r *fakeRatingRepo) ListLovedMediaIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return r.loved[userID], nil
}

type fakeStatusRepo struct {
	current   map[string]string
	byMedia   []model.WatchStatus
	viewer    *model.WatchStatus
	toggleErr error
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{current: make(map[string]string)}
}

func (r *fakeStatusRepo) Toggle(ctx context.Context, status *model.WatchStatus) (string, string, error) {
	if r.toggleErr != nil {
		return "", "", r.toggleErr
	}
	key := ratingKey(status.UserID, status.MediaID)
	old := r.current[key]
	if old == status.Status {
		delete(r.current, key)
		return old, "", nil
	}
	r.current[key] = status.Status
	return old, status.Status, nil
}

func (r *fakeStatusRepo) Upsert(ctx context.Context, status *model.WatchStatus) error {
	r.current[ratingKey(status.UserID, status.MediaID)] = status.Status
	return nil
}

func (r *fakeStatusRepo) Get(ctx context.Context, userID uuid.UUID, mediaID string) (*model.WatchStatus, error) {
	return r.viewer, nil
}

func (r *fakeStatusRepo) ListByMediaForUsers(ctx context.Context, mediaID string, userIDs []uuid.UUID) ([]model.WatchStatus, error) {
	return r.byMedia, nil
}

type fakeLikeRepo struct {
	likes     map[string]bool
	toggleErr error
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[string]bool)}
}

func likeKey(userID, activityID uuid.UUID) string {
	return userID.String() + ":" + activityID.String()
}

func (r *fakeLikeRepo) Toggle(ctx context.Context, userID, activityID uuid.UUID) (bool, error) {
	if r.toggleErr != nil {
		return false, r.toggleErr
	}
	key := likeKey(userID, activityID)
	if r.likes[key] {
		delete(r.likes, key)
		return false, nil
	}
	r.likes[key] = true
	return true, nil
}

func (r *fakeLikeRepo) IsLiked(ctx context.Context, userID, activityID uuid.UUID) (bool, error) {
	return r.likes[likeKey(userID, activityID)], nil
}

func (r *fakeLikeRepo) Count(ctx context.Context, activityID uuid.UUID) (int64, error) {
	var count int64
	suffix := ":" + activityID.String()
	for key, active := range r.likes {
		if active && len(key) > len(suffix) && key[len(key)-len(suffix):] == suffix {
			count++
		}
	}
	return count, nil
}

type fakeCommentRepo struct {
	comments []model.Comment
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range r.comments {
		if c.ActivityID == activityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListByMedia(ctx context.Context, mediaID string, limit int) ([]model.Comment, error) {
	return nil, nil
}

func (r *fakeCommentRepo) CountByActivity(ctx context.Context, activityID uuid.UUID) (int64, error) {
	var count int64
	for _, c := range r.comments {
		if c.ActivityID == activityID {
			count++
		}
	}
	return count, nil
}

type fakeSettingRepo struct {
	settings map[string]string
}

func (r *fakeSettingRepo) Get(ctx context.Context, key string) (*model.AppSetting, error) {
	if value, ok := r.settings[key]; ok {
		return &model.AppSetting{Key: key, Value: value}, nil
	}
	return nil, nil
}

func (r *fakeSettingRepo) Upsert(ctx context.Context, setting *model.AppSetting) error {
	if r.settings == nil {
		r.settings = make(map[string]string)
	}
	r.settings[setting.Key] = setting.Value
	return nil
}

type fakeProvider struct {
	platforms []string
	err       error
}

func (p *fakeProvider) GetWatchProviders(ctx context.Context, mediaID, mediaType string) ([]string, error) {
	return p.platforms, p.err
}

type fakeNotifications struct {
	created []model.Notification
}

func (n *fakeNotifications) CreateNotification(ctx context.Context, notification *model.Notification) error {
	n.created = append(n.created, *notification)
	return nil
}

func (n *fakeNotifications) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return nil, nil
}

func (n *fakeNotifications) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error { return nil }

func (n *fakeNotifications) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error { return nil }

func (n *fakeNotifications) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeEnricher struct {
	context *MediaSocialContext
}

func (e *fakeEnricher) Enrich(ctx context.Context, mediaID, mediaType string, viewerID uuid.UUID) *MediaSocialContext {
	return e.context
}

func (e *fakeEnricher) EnrichWithFriends(ctx context.Context, mediaID, mediaType string, viewerID uuid.UUID, friendIDs []uuid.UUID) *MediaSocialContext {
	return e.context
}

type fakeSuggestions struct {
	suggestions []FollowSuggestion
	dismissed   []uuid.UUID
}

func (s *fakeSuggestions) GetSuggestions(ctx context.Context, viewerID uuid.UUID, limit int) ([]FollowSuggestion, error) {
	return s.suggestions, nil
}

func (s *fakeSuggestions) Dismiss(ctx context.Context, viewerID, targetID uuid.UUID) error {
	s.dismissed = append(s.dismissed, targetID)
	return nil
}
