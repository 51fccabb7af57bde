// Package memory is a map-backed repo.Store for tests and local runs.
//
// All transactions share one writer lock, so a transaction observes no
// concurrent writes and readers never see a transaction half applied.
// Rollback restores a snapshot taken when the transaction began.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo"

	"github.com/google/uuid"
)

type tables struct {
	seq           uint64
	order         map[string]uint64
	users         map[string]entity.User
	creators      map[string]entity.Creator
	posts         map[string]entity.Post
	likes         map[string]entity.Like
	subscriptions map[string]entity.Subscription
	tips          map[string]entity.Tip
	unlocks       map[string]entity.PostUnlock
	comments      map[string]entity.Comment
	votes         map[string]entity.CommentVote
	conversations map[string]entity.Conversation
	messages      map[string]entity.Message
	nonces        map[string]entity.WalletNonce
}

func newTables() *tables {
	return &tables{
		order:         make(map[string]uint64),
		users:         make(map[string]entity.User),
		creators:      make(map[string]entity.Creator),
		posts:         make(map[string]entity.Post),
		likes:         make(map[string]entity.Like),
		subscriptions: make(map[string]entity.Subscription),
		tips:          make(map[string]entity.Tip),
		unlocks:       make(map[string]entity.PostUnlock),
		comments:      make(map[string]entity.Comment),
		votes:         make(map[string]entity.CommentVote),
		conversations: make(map[string]entity.Conversation),
		messages:      make(map[string]entity.Message),
		nonces:        make(map[string]entity.WalletNonce),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:           t.seq,
		order:         copyMap(t.order),
		users:         copyMap(t.users),
		creators:      make(map[string]entity.Creator, len(t.creators)),
		posts:         copyMap(t.posts),
		likes:         copyMap(t.likes),
		subscriptions: copyMap(t.subscriptions),
		tips:          copyMap(t.tips),
		unlocks:       copyMap(t.unlocks),
		comments:      copyMap(t.comments),
		votes:         copyMap(t.votes),
		conversations: copyMap(t.conversations),
		messages:      copyMap(t.messages),
		nonces:        copyMap(t.nonces),
	}
	for k, v := range t.creators {
		c.creators[k] = cloneCreator(v)
	}
	return c
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Store struct {
	mu   *sync.RWMutex
	data *tables
	now  func() time.Time
	inTx bool
}

type Option func(*Store)

// WithClock overrides the timestamp source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		mu:   &sync.RWMutex{},
		data: newTables(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repo.Store = (*Store)(nil)

func (s *Store) read() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) write() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repo.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, now: s.now, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *Store) stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if createdAt.IsZero() {
		*createdAt = s.now().UTC()
	}
	s.data.seq++
	s.data.order[*id] = s.data.seq
}

// newestFirst sorts ids by creation time, then insertion order, descending.
func (s *Store) newestFirst(ids []string, created func(string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := created(ids[i]), created(ids[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return s.data.order[ids[i]] > s.data.order[ids[j]]
	})
}

func (s *Store) oldestFirst(ids []string, created func(string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := created(ids[i]), created(ids[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return s.data.order[ids[i]] < s.data.order[ids[j]]
	})
}

// Users

func (s *Store) CreateUser(_ context.Context, user *entity.User) error {
	defer s.write()()

	email := strings.ToLower(user.Email)
	for _, u := range s.data.users {
		if strings.ToLower(u.Email) == email {
			return repo.ErrConflict
		}
		if user.WalletAddress != nil && u.WalletAddress != nil && strings.EqualFold(*u.WalletAddress, *user.WalletAddress) {
			return repo.ErrConflict
		}
	}
	s.stamp(&user.ID, &user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	s.data.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*entity.User, error) {
	defer s.read()()

	u, ok := s.data.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	defer s.read()()

	for _, u := range s.data.users {
		if strings.EqualFold(u.Email, email) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) GetUserByWallet(_ context.Context, address string) (*entity.User, error) {
	defer s.read()()

	for _, u := range s.data.users {
		if u.WalletAddress != nil && strings.EqualFold(*u.WalletAddress, address) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, user *entity.User) error {
	defer s.write()()

	if _, ok := s.data.users[user.ID]; !ok {
		return repo.ErrNotFound
	}
	for id, u := range s.data.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) {
			return repo.ErrConflict
		}
		if user.WalletAddress != nil && u.WalletAddress != nil && strings.EqualFold(*u.WalletAddress, *user.WalletAddress) {
			return repo.ErrConflict
		}
	}
	user.UpdatedAt = s.now().UTC()
	s.data.users[user.ID] = cloneUser(*user)
	return nil
}

// Creators

func (s *Store) CreateCreator(_ context.Context, creator *entity.Creator) error {
	defer s.write()()

	for _, c := range s.data.creators {
		if c.UserID == creator.UserID || strings.EqualFold(c.Handle, creator.Handle) {
			return repo.ErrConflict
		}
	}
	s.stamp(&creator.ID, &creator.CreatedAt)
	creator.UpdatedAt = creator.CreatedAt
	s.data.creators[creator.ID] = cloneCreator(*creator)
	return nil
}

func (s *Store) GetCreator(_ context.Context, id string) (*entity.Creator, error) {
	defer s.read()()

	c, ok := s.data.creators[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := cloneCreator(c)
	return &out, nil
}

func (s *Store) GetCreatorByUserID(_ context.Context, userID string) (*entity.Creator, error) {
	defer s.read()()

	for _, c := range s.data.creators {
		if c.UserID == userID {
			out := cloneCreator(c)
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) GetCreatorByHandle(_ context.Context, handle string) (*entity.Creator, error) {
	defer s.read()()

	for _, c := range s.data.creators {
		if strings.EqualFold(c.Handle, handle) {
			out := cloneCreator(c)
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) ListCreators(_ context.Context, limit, offset int) ([]*entity.Creator, error) {
	defer s.read()()

	ids := make([]string, 0, len(s.data.creators))
	for id := range s.data.creators {
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time { return s.data.creators[id].CreatedAt })
	ids = page(ids, limit, offset)

	out := make([]*entity.Creator, 0, len(ids))
	for _, id := range ids {
		c := cloneCreator(s.data.creators[id])
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) UpdateCreator(_ context.Context, creator *entity.Creator) error {
	defer s.write()()

	if _, ok := s.data.creators[creator.ID]; !ok {
		return repo.ErrNotFound
	}
	for id, c := range s.data.creators {
		if id != creator.ID && strings.EqualFold(c.Handle, creator.Handle) {
			return repo.ErrConflict
		}
	}
	creator.UpdatedAt = s.now().UTC()
	s.data.creators[creator.ID] = cloneCreator(*creator)
	return nil
}

func (s *Store) LockCreator(ctx context.Context, id string) (*entity.Creator, error) {
	return s.GetCreator(ctx, id)
}

// Posts

func (s *Store) CreatePost(_ context.Context, post *entity.Post) error {
	defer s.write()()

	s.stamp(&post.ID, &post.CreatedAt)
	post.UpdatedAt = post.CreatedAt
	s.data.posts[post.ID] = clonePost(*post)
	return nil
}

func (s *Store) GetPost(_ context.Context, id string) (*entity.Post, error) {
	defer s.read()()

	p, ok := s.data.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (s *Store) ListPosts(_ context.Context) ([]*entity.Post, error) {
	defer s.read()()

	return s.collectPosts(func(entity.Post) bool { return true }), nil
}

func (s *Store) ListPostsByCreator(_ context.Context, creatorID string) ([]*entity.Post, error) {
	defer s.read()()

	return s.collectPosts(func(p entity.Post) bool { return p.CreatorID == creatorID }), nil
}

func (s *Store) collectPosts(keep func(entity.Post) bool) []*entity.Post {
	ids := make([]string, 0)
	for id, p := range s.data.posts {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.data.posts[id].CreatedAt })

	out := make([]*entity.Post, 0, len(ids))
	for _, id := range ids {
		p := clonePost(s.data.posts[id])
		out = append(out, &p)
	}
	return out
}

func (s *Store) UpdatePost(_ context.Context, post *entity.Post) error {
	defer s.write()()

	if _, ok := s.data.posts[post.ID]; !ok {
		return repo.ErrNotFound
	}
	post.UpdatedAt = s.now().UTC()
	s.data.posts[post.ID] = clonePost(*post)
	return nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	defer s.write()()

	if _, ok := s.data.posts[id]; !ok {
		return repo.ErrNotFound
	}
	for cid, c := range s.data.comments {
		if c.PostID != id {
			continue
		}
		for vid, v := range s.data.votes {
			if v.CommentID == cid {
				delete(s.data.votes, vid)
			}
		}
		delete(s.data.comments, cid)
	}
	for lid, l := range s.data.likes {
		if l.PostID == id {
			delete(s.data.likes, lid)
		}
	}
	delete(s.data.posts, id)
	return nil
}

func (s *Store) LockPost(ctx context.Context, id string) (*entity.Post, error) {
	return s.GetPost(ctx, id)
}

// Likes

func (s *Store) GetLike(_ context.Context, postID, userID string) (*entity.Like, error) {
	defer s.read()()

	for _, l := range s.data.likes {
		if l.PostID == postID && l.UserID == userID {
			out := l
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) CreateLike(_ context.Context, like *entity.Like) error {
	defer s.write()()

	for _, l := range s.data.likes {
		if l.PostID == like.PostID && l.UserID == like.UserID {
			return repo.ErrConflict
		}
	}
	s.stamp(&like.ID, &like.CreatedAt)
	s.data.likes[like.ID] = *like
	return nil
}

func (s *Store) DeleteLike(_ context.Context, id string) error {
	defer s.write()()

	if _, ok := s.data.likes[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.data.likes, id)
	return nil
}

// Subscriptions

func (s *Store) CreateSubscription(_ context.Context, sub *entity.Subscription) error {
	defer s.write()()

	if sub.Active {
		for _, existing := range s.data.subscriptions {
			if existing.Active && existing.SupporterID == sub.SupporterID && existing.CreatorID == sub.CreatorID {
				return repo.ErrConflict
			}
		}
	}
	s.stamp(&sub.ID, &sub.CreatedAt)
	sub.UpdatedAt = sub.CreatedAt
	s.data.subscriptions[sub.ID] = *sub
	return nil
}

func (s *Store) GetSubscription(_ context.Context, id string) (*entity.Subscription, error) {
	defer s.read()()

	sub, ok := s.data.subscriptions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &sub, nil
}

func (s *Store) UpdateSubscription(_ context.Context, sub *entity.Subscription) error {
	defer s.write()()

	if _, ok := s.data.subscriptions[sub.ID]; !ok {
		return repo.ErrNotFound
	}
	if sub.Active {
		for id, existing := range s.data.subscriptions {
			if id != sub.ID && existing.Active && existing.SupporterID == sub.SupporterID && existing.CreatorID == sub.CreatorID {
				return repo.ErrConflict
			}
		}
	}
	sub.UpdatedAt = s.now().UTC()
	s.data.subscriptions[sub.ID] = *sub
	return nil
}

func (s *Store) ListSubscriptionsBySupporter(_ context.Context, supporterID string) ([]*entity.Subscription, error) {
	defer s.read()()

	return s.collectSubscriptions(func(sub entity.Subscription) bool { return sub.SupporterID == supporterID }), nil
}

func (s *Store) ListSubscriptionsByCreator(_ context.Context, creatorID string) ([]*entity.Subscription, error) {
	defer s.read()()

	return s.collectSubscriptions(func(sub entity.Subscription) bool { return sub.CreatorID == creatorID }), nil
}

func (s *Store) collectSubscriptions(keep func(entity.Subscription) bool) []*entity.Subscription {
	ids := make([]string, 0)
	for id, sub := range s.data.subscriptions {
		if keep(sub) {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.data.subscriptions[id].CreatedAt })

	out := make([]*entity.Subscription, 0, len(ids))
	for _, id := range ids {
		sub := s.data.subscriptions[id]
		out = append(out, &sub)
	}
	return out
}

func (s *Store) DeactivateSubscription(_ context.Context, id string, at time.Time) (bool, error) {
	defer s.write()()

	sub, ok := s.data.subscriptions[id]
	if !ok {
		return false, repo.ErrNotFound
	}
	if !sub.Active {
		return false, nil
	}
	sub.Active = false
	sub.UpdatedAt = at
	s.data.subscriptions[id] = sub
	return true, nil
}

// Tips

func (s *Store) CreateTip(_ context.Context, tip *entity.Tip) error {
	defer s.write()()

	s.stamp(&tip.ID, &tip.CreatedAt)
	s.data.tips[tip.ID] = cloneTip(*tip)
	return nil
}

func (s *Store) ListTipsByCreator(_ context.Context, creatorID string) ([]*entity.Tip, error) {
	defer s.read()()

	ids := make([]string, 0)
	for id, tip := range s.data.tips {
		if tip.CreatorID != nil && *tip.CreatorID == creatorID {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.data.tips[id].CreatedAt })

	out := make([]*entity.Tip, 0, len(ids))
	for _, id := range ids {
		tip := cloneTip(s.data.tips[id])
		out = append(out, &tip)
	}
	return out, nil
}

// Post unlocks

func (s *Store) CreatePostUnlock(_ context.Context, unlock *entity.PostUnlock) error {
	defer s.write()()

	for _, u := range s.data.unlocks {
		if (u.PostID == unlock.PostID && u.UserID == unlock.UserID) || u.TipID == unlock.TipID {
			return repo.ErrConflict
		}
	}
	s.stamp(&unlock.ID, &unlock.CreatedAt)
	s.data.unlocks[unlock.ID] = *unlock
	return nil
}

func (s *Store) GetPostUnlock(_ context.Context, postID, userID string) (*entity.PostUnlock, error) {
	defer s.read()()

	for _, u := range s.data.unlocks {
		if u.PostID == postID && u.UserID == userID {
			out := u
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) ListPostUnlocksByUser(_ context.Context, userID string) ([]*entity.PostUnlock, error) {
	defer s.read()()

	ids := make([]string, 0)
	for id, u := range s.data.unlocks {
		if u.UserID == userID {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.data.unlocks[id].CreatedAt })

	out := make([]*entity.PostUnlock, 0, len(ids))
	for _, id := range ids {
		u := s.data.unlocks[id]
		out = append(out, &u)
	}
	return out, nil
}

// Comments

func (s *Store) CreateComment(_ context.Context, comment *entity.Comment) error {
	defer s.write()()

	if _, ok := s.data.posts[comment.PostID]; !ok {
		return repo.ErrNotFound
	}
	s.stamp(&comment.ID, &comment.CreatedAt)
	comment.UpdatedAt = comment.CreatedAt
	s.data.comments[comment.ID] = *comment
	return nil
}

func (s *Store) GetComment(_ context.Context, id string) (*entity.Comment, error) {
	defer s.read()()

	c, ok := s.data.comments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCommentsByPost(_ context.Context, postID string) ([]*entity.Comment, error) {
	defer s.read()()

	ids := make([]string, 0)
	for id, c := range s.data.comments {
		if c.PostID == postID {
			ids = append(ids, id)
		}
	}
	s.oldestFirst(ids, func(id string) time.Time { return s.data.comments[id].CreatedAt })

	out := make([]*entity.Comment, 0, len(ids))
	for _, id := range ids {
		c := s.data.comments[id]
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) UpdateComment(_ context.Context, comment *entity.Comment) error {
	defer s.write()()

	if _, ok := s.data.comments[comment.ID]; !ok {
		return repo.ErrNotFound
	}
	comment.UpdatedAt = s.now().UTC()
	s.data.comments[comment.ID] = *comment
	return nil
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	defer s.write()()

	if _, ok := s.data.comments[id]; !ok {
		return repo.ErrNotFound
	}
	for vid, v := range s.data.votes {
		if v.CommentID == id {
			delete(s.data.votes, vid)
		}
	}
	delete(s.data.comments, id)
	return nil
}

func (s *Store) LockComment(ctx context.Context, id string) (*entity.Comment, error) {
	return s.GetComment(ctx, id)
}

// Comment votes

func (s *Store) GetCommentVote(_ context.Context, commentID, userID string) (*entity.CommentVote, error) {
	defer s.read()()

	for _, v := range s.data.votes {
		if v.CommentID == commentID && v.UserID == userID {
			out := v
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) CreateCommentVote(_ context.Context, vote *entity.CommentVote) error {
	defer s.write()()

	for _, v := range s.data.votes {
		if v.CommentID == vote.CommentID && v.UserID == vote.UserID {
			return repo.ErrConflict
		}
	}
	s.stamp(&vote.ID, &vote.CreatedAt)
	s.data.votes[vote.ID] = *vote
	return nil
}

func (s *Store) DeleteCommentVote(_ context.Context, id string) error {
	defer s.write()()

	if _, ok := s.data.votes[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.data.votes, id)
	return nil
}

func (s *Store) ListCommentVotesByComment(_ context.Context, commentID string) ([]*entity.CommentVote, error) {
	defer s.read()()

	out := make([]*entity.CommentVote, 0)
	for _, v := range s.data.votes {
		if v.CommentID == commentID {
			vote := v
			out = append(out, &vote)
		}
	}
	return out, nil
}

// Conversations

func (s *Store) CreateConversation(_ context.Context, conv *entity.Conversation) error {
	defer s.write()()

	conv.ParticipantA, conv.ParticipantB = repo.OrderedPair(conv.ParticipantA, conv.ParticipantB)
	for _, c := range s.data.conversations {
		if c.ParticipantA == conv.ParticipantA && c.ParticipantB == conv.ParticipantB {
			return repo.ErrConflict
		}
	}
	s.stamp(&conv.ID, &conv.CreatedAt)
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = conv.CreatedAt
	}
	s.data.conversations[conv.ID] = *conv
	return nil
}

func (s *Store) GetConversation(_ context.Context, id string) (*entity.Conversation, error) {
	defer s.read()()

	c, ok := s.data.conversations[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetConversationBetween(_ context.Context, userA, userB string) (*entity.Conversation, error) {
	defer s.read()()

	a, b := repo.OrderedPair(userA, userB)
	for _, c := range s.data.conversations {
		if c.ParticipantA == a && c.ParticipantB == b {
			out := c
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) ListConversationsByUser(_ context.Context, userID string) ([]*entity.Conversation, error) {
	defer s.read()()

	ids := make([]string, 0)
	for id, c := range s.data.conversations {
		if c.HasParticipant(userID) {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.data.conversations[id].LastMessageAt })

	out := make([]*entity.Conversation, 0, len(ids))
	for _, id := range ids {
		c := s.data.conversations[id]
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) UpdateConversation(_ context.Context, conv *entity.Conversation) error {
	defer s.write()()

	if _, ok := s.data.conversations[conv.ID]; !ok {
		return repo.ErrNotFound
	}
	s.data.conversations[conv.ID] = *conv
	return nil
}

func (s *Store) CreateMessage(_ context.Context, msg *entity.Message) error {
	defer s.write()()

	if _, ok := s.data.conversations[msg.ConversationID]; !ok {
		return repo.ErrNotFound
	}
	s.stamp(&msg.ID, &msg.CreatedAt)
	s.data.messages[msg.ID] = *msg
	return nil
}

// ListMessages returns the latest limit messages in chronological order.
func (s *Store) ListMessages(_ context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	defer s.read()()

	ids := make([]string, 0)
	for id, m := range s.data.messages {
		if m.ConversationID == conversationID {
			ids = append(ids, id)
		}
	}
	s.oldestFirst(ids, func(id string) time.Time { return s.data.messages[id].CreatedAt })
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}

	out := make([]*entity.Message, 0, len(ids))
	for _, id := range ids {
		m := s.data.messages[id]
		out = append(out, &m)
	}
	return out, nil
}

func (s *Store) MarkMessagesRead(_ context.Context, conversationID, readerID string) error {
	defer s.write()()

	for id, m := range s.data.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.Read {
			m.Read = true
			s.data.messages[id] = m
		}
	}
	return nil
}

// Wallet nonces

func (s *Store) UpsertWalletNonce(_ context.Context, nonce *entity.WalletNonce) error {
	defer s.write()()

	key := strings.ToLower(nonce.Address)
	if existing, ok := s.data.nonces[key]; ok {
		nonce.ID = existing.ID
		nonce.CreatedAt = s.now().UTC()
	} else {
		s.stamp(&nonce.ID, &nonce.CreatedAt)
	}
	s.data.nonces[key] = *nonce
	return nil
}

func (s *Store) GetWalletNonce(_ context.Context, address string) (*entity.WalletNonce, error) {
	defer s.read()()

	n, ok := s.data.nonces[strings.ToLower(address)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &n, nil
}

func (s *Store) DeleteWalletNonce(_ context.Context, address string) error {
	defer s.write()()

	delete(s.data.nonces, strings.ToLower(address))
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
