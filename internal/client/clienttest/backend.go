// Package clienttest provides an in-memory Lost & Found backend for tests.
package clienttest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// Backend is a fake REST backend served by httptest. It keeps just enough
// state to exercise every client operation and records each request it sees.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	users     map[string]*model.User
	passwords map[string]string // email -> password
	tokens    map[string]string // token -> user id
	items     map[string]*model.Item
	claims    map[string]*model.ClaimRequest
	messages  map[string][]model.Message
	failures  map[string]int
	calls     []string
	clock     time.Time
	seq       int
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:     make(map[string]*model.User),
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		items:     make(map[string]*model.Item),
		claims:    make(map[string]*model.ClaimRequest),
		messages:  make(map[string][]model.Message),
		failures:  make(map[string]int),
		clock:     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL to hand to client.New.
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser registers a user and returns its bearer token.
func (b *Backend) AddUser(id, fullName, email, password string, admin bool) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(id, fullName, email, password, admin)
}

func (b *Backend) addUserLocked(id, fullName, email, password string, admin bool) string {
	u := &model.User{ID: id, FullName: fullName, Email: email, IsAdmin: admin, UserType: "REGULAR", AccountStatus: "ACTIVE"}
	if admin {
		u.UserType = "ADMIN"
	}
	first, last, _ := strings.Cut(fullName, " ")
	u.FirstName, u.LastName = first, last
	b.users[id] = u
	b.passwords[email] = password
	token := "token-" + id
	b.tokens[token] = id
	return token
}

// AddItem stores an item as given. Missing status defaults to active.
func (b *Backend) AddItem(item model.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if item.Status == "" {
		item.Status = model.ItemStatusActive
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = b.nowLocked()
	}
	if owner, ok := b.users[item.UserID]; ok {
		item.OwnerName = owner.DisplayName()
		item.OwnerEmail = owner.Email
	}
	b.items[item.ID] = &item
}

// Item returns a copy of the stored item.
func (b *Backend) Item(id string) (model.Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[id]
	if !ok {
		return model.Item{}, false
	}
	return *it, true
}

// Claim returns a copy of the stored claim.
func (b *Backend) Claim(id string) (model.ClaimRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.claims[id]
	if !ok {
		return model.ClaimRequest{}, false
	}
	return *c, true
}

// Messages returns the stored messages of a conversation.
func (b *Backend) Messages(claimID string) []model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.messages[claimID])
}

// Fail makes every request to "METHOD /path" answer with status. A zero
// status clears the failure.
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = status
}

// Calls returns every request seen so far as "METHOD /path".
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// CallCount returns how many requests matched route.
func (b *Backend) CallCount(route string) int {
	n := 0
	for _, c := range b.Calls() {
		if c == route {
			n++
		}
	}
	return n
}

func (b *Backend) nowLocked() time.Time {
	b.clock = b.clock.Add(time.Second)
	return b.clock
}

func (b *Backend) nextIDLocked(prefix string) string {
	b.seq++
	return prefix + strconv.Itoa(b.seq)
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("GET /auth/me", b.authed(b.me))

	mux.HandleFunc("GET /items", b.listItems)
	mux.HandleFunc("POST /items", b.authed(b.createItem))
	mux.HandleFunc("GET /items/{id}", b.getItem)
	mux.HandleFunc("PUT /items/{id}", b.authed(b.updateItem))
	mux.HandleFunc("POST /upload/image", b.authed(b.upload))
	mux.HandleFunc("GET /dashboard", b.authed(b.dashboard))

	mux.HandleFunc("POST /claims", b.authed(b.createClaim))
	mux.HandleFunc("PUT /claims/{id}", b.authed(b.updateClaim))

	mux.HandleFunc("GET /messages/conversations", b.authed(b.listConversations))
	mux.HandleFunc("GET /messages/conversations/{id}", b.authed(b.getConversation))
	mux.HandleFunc("POST /messages/conversations/{id}", b.authed(b.sendMessage))
	mux.HandleFunc("POST /messages/conversations/{id}/read", b.authed(b.markRead))

	mux.HandleFunc("GET /admin/stats", b.admin(b.adminStats))
	mux.HandleFunc("GET /admin/items", b.admin(b.adminItems))
	mux.HandleFunc("POST /admin/items/{id}/moderate", b.admin(b.moderate))
	mux.HandleFunc("DELETE /admin/items/{id}", b.admin(b.deleteItem))
	mux.HandleFunc("GET /admin/claims", b.admin(b.adminClaims))
	mux.HandleFunc("PUT /admin/claims/{id}", b.admin(b.adminUpdateClaim))
	mux.HandleFunc("GET /admin/users", b.admin(b.adminUsers))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.calls = append(b.calls, route)
		status := b.failures[route]
		b.mu.Unlock()
		if status != 0 {
			detail(w, status, http.StatusText(status))
			return
		}
		mux.ServeHTTP(w, r)
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, u *model.User)

func (b *Backend) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		u := b.users[b.tokens[token]]
		b.mu.Unlock()
		if !ok || u == nil {
			detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r, u)
	}
}

func (b *Backend) admin(next userHandler) http.HandlerFunc {
	return b.authed(func(w http.ResponseWriter, r *http.Request, u *model.User) {
		if u.Role() != model.RoleAdmin {
			detail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, u)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	pw, ok := b.passwords[req.Email]
	if !ok || pw != req.Password {
		detail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	for token, id := range b.tokens {
		if u := b.users[id]; u.Email == req.Email {
			respond(w, http.StatusOK, model.AuthResult{AccessToken: token, TokenType: "bearer", User: *u})
			return
		}
	}
	detail(w, http.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.passwords[req.Email]; exists {
		detail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	b.addUserLocked(b.nextIDLocked("u"), req.FullName, req.Email, req.Password, false)
	respond(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request, u *model.User) {
	respond(w, http.StatusOK, u)
}

func (b *Backend) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 12
	}
	search := strings.ToLower(q.Get("search"))

	b.mu.Lock()
	var matched []model.Item
	for _, it := range b.items {
		switch {
		case it.Status != model.ItemStatusActive:
		case q.Get("type") != "" && it.Type != q.Get("type"):
		case q.Get("category") != "" && it.Category != q.Get("category"):
		case q.Get("location") != "" && !strings.Contains(strings.ToLower(it.Location), strings.ToLower(q.Get("location"))):
		case q.Get("urgency") != "" && it.Urgency != q.Get("urgency"):
		case q.Get("has_reward") == "true" && it.Reward <= 0:
		case search != "" && !strings.Contains(strings.ToLower(it.Title+" "+it.Description), search):
		default:
			matched = append(matched, *it)
		}
	}
	b.mu.Unlock()
	sortItems(matched)

	total := len(matched)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	respond(w, http.StatusOK, model.ItemList{
		Items:   matched[start:end],
		Total:   total,
		Page:    page,
		PerPage: perPage,
		HasNext: end < total,
		HasPrev: page > 1,
	})
}

func (b *Backend) createItem(w http.ResponseWriter, r *http.Request, u *model.User) {
	var d model.ItemDraft
	if !decode(w, r, &d) {
		return
	}
	if len(d.Title) < 3 {
		fieldDetail(w, "title", "String should have at least 3 characters")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.nowLocked()
	it := &model.Item{
		ID: b.nextIDLocked("item-"), Type: d.Type, UserID: u.ID, Title: d.Title,
		Category: d.Category, Description: d.Description, Location: d.Location,
		Images: d.Images, Reward: d.Reward, Urgency: d.Urgency, DateLost: d.DateLost,
		TimeLost: d.TimeLost, ContactPreference: d.ContactPreference, Condition: d.Condition,
		StorageLocation: d.StorageLocation, Status: model.ItemStatusActive,
		OwnerName: u.DisplayName(), OwnerEmail: u.Email, CreatedAt: now, UpdatedAt: now,
	}
	b.items[it.ID] = it
	respond(w, http.StatusOK, it)
}

func (b *Backend) getItem(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[r.PathValue("id")]
	if !ok {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}
	respond(w, http.StatusOK, it)
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request, u *model.User) {
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[r.PathValue("id")]
	if !ok || it.UserID != u.ID {
		detail(w, http.StatusForbidden, "Not authorized to update this item")
		return
	}
	it.Status = req.Status
	it.UpdatedAt = b.nowLocked()
	respond(w, http.StatusOK, it)
}

func (b *Backend) upload(w http.ResponseWriter, r *http.Request, u *model.User) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		detail(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()
	io.Copy(io.Discard, f)
	path := "items/" + u.ID + "/" + hdr.Filename
	respond(w, http.StatusOK, model.Upload{URL: "/uploads/" + path, PublicURL: "https://cdn.example/" + path, Path: path})
}

func (b *Backend) dashboard(w http.ResponseWriter, r *http.Request, u *model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var d model.Dashboard
	for _, it := range b.items {
		if it.UserID != u.ID {
			continue
		}
		d.RecentItems = append(d.RecentItems, *it)
		d.Stats.TotalItemsPosted++
		if it.Status == model.ItemStatusResolved {
			d.Stats.ItemsRecovered++
		}
	}
	sortItems(d.RecentItems)
	for _, c := range b.claims {
		if c.ClaimerID == u.ID {
			d.Stats.HelpingOthers++
		}
		if it := b.items[c.ItemID]; it != nil && it.UserID == u.ID {
			d.ClaimRequests = append(d.ClaimRequests, b.joinClaimLocked(c))
		}
	}
	if d.Stats.TotalItemsPosted > 0 {
		d.Stats.SuccessRate = float64(d.Stats.ItemsRecovered) / float64(d.Stats.TotalItemsPosted) * 100
	}
	respond(w, http.StatusOK, d)
}

func (b *Backend) createClaim(w http.ResponseWriter, r *http.Request, u *model.User) {
	var d model.ClaimDraft
	if !decode(w, r, &d) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[d.ItemID]
	switch {
	case !ok:
		detail(w, http.StatusNotFound, "Item not found")
		return
	case it.UserID == u.ID:
		detail(w, http.StatusBadRequest, "Cannot claim your own item")
		return
	case it.Status != model.ItemStatusActive:
		detail(w, http.StatusBadRequest, "Item is not available for claiming")
		return
	}
	now := b.nowLocked()
	c := &model.ClaimRequest{
		ID: b.nextIDLocked("claim-"), ItemID: it.ID, ClaimerID: u.ID, Message: d.Message,
		ContactPreference: d.ContactPreference, Status: model.ClaimStatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	b.claims[c.ID] = c
	// The claim text opens the conversation.
	b.messages[c.ID] = []model.Message{{
		ID: b.nextIDLocked("msg-"), ClaimRequestID: c.ID, SenderID: u.ID,
		Body: d.Message, CreatedAt: now, SenderName: u.DisplayName(),
	}}
	respond(w, http.StatusOK, b.joinClaimLocked(c))
}

func (b *Backend) updateClaim(w http.ResponseWriter, r *http.Request, u *model.User) {
	var req model.ClaimUpdate
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.claims[r.PathValue("id")]
	if !ok {
		detail(w, http.StatusNotFound, "Claim not found")
		return
	}
	if it := b.items[c.ItemID]; it == nil || it.UserID != u.ID {
		detail(w, http.StatusForbidden, "Only the item owner can update this claim")
		return
	}
	c.Status = req.Status
	c.UpdatedAt = b.nowLocked()
	respond(w, http.StatusOK, b.joinClaimLocked(c))
}

func (b *Backend) joinClaimLocked(c *model.ClaimRequest) model.ClaimRequest {
	out := *c
	if it := b.items[c.ItemID]; it != nil {
		out.ItemTitle = it.Title
		out.ItemType = it.Type
	}
	if u := b.users[c.ClaimerID]; u != nil {
		out.ClaimerName = u.DisplayName()
		out.ClaimerEmail = u.Email
	}
	return out
}

// participantLocked returns the claim when u may read its conversation.
func (b *Backend) participantLocked(w http.ResponseWriter, id string, u *model.User) (*model.ClaimRequest, *model.Item, bool) {
	c, ok := b.claims[id]
	if !ok {
		detail(w, http.StatusNotFound, "Conversation not found")
		return nil, nil, false
	}
	it := b.items[c.ItemID]
	if c.ClaimerID != u.ID && (it == nil || it.UserID != u.ID) && u.Role() != model.RoleAdmin {
		detail(w, http.StatusForbidden, "Not a participant in this conversation")
		return nil, nil, false
	}
	return c, it, true
}

func (b *Backend) listConversations(w http.ResponseWriter, r *http.Request, u *model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	convs := []model.ConversationSummary{}
	for _, c := range b.claims {
		it := b.items[c.ItemID]
		if it == nil || (c.ClaimerID != u.ID && it.UserID != u.ID) {
			continue
		}
		otherID := it.UserID
		if otherID == u.ID {
			otherID = c.ClaimerID
		}
		sum := model.ConversationSummary{
			ClaimRequestID: c.ID,
			ItemTitle:      it.Title,
			ItemType:       it.Type,
			Status:         c.Status,
		}
		if other := b.users[otherID]; other != nil {
			sum.OtherParticipant = model.Participant{ID: other.ID, Name: other.DisplayName()}
		}
		msgs := b.messages[c.ID]
		for _, m := range msgs {
			if m.SenderID != u.ID && !m.IsRead {
				sum.UnreadCount++
			}
		}
		if n := len(msgs); n > 0 {
			last := msgs[n-1]
			sum.LatestMessage = &model.LatestMessage{Content: last.Body, Timestamp: last.CreatedAt, IsFromMe: last.SenderID == u.ID}
		}
		convs = append(convs, sum)
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].ClaimRequestID < convs[j].ClaimRequestID })
	respond(w, http.StatusOK, map[string]any{"conversations": convs, "total": len(convs)})
}

func (b *Backend) getConversation(w http.ResponseWriter, r *http.Request, u *model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, it, ok := b.participantLocked(w, r.PathValue("id"), u)
	if !ok {
		return
	}
	conv := model.Conversation{
		ClaimRequest: b.joinClaimLocked(c),
		Messages:     slices.Clone(b.messages[c.ID]),
	}
	if it != nil {
		conv.Item = *it
		if owner := b.users[it.UserID]; owner != nil {
			conv.Participants = append(conv.Participants, *owner)
		}
	}
	if claimer := b.users[c.ClaimerID]; claimer != nil {
		conv.Participants = append(conv.Participants, *claimer)
	}
	if conv.Messages == nil {
		conv.Messages = []model.Message{}
	}
	respond(w, http.StatusOK, conv)
}

func (b *Backend) sendMessage(w http.ResponseWriter, r *http.Request, u *model.User) {
	var req struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, _, ok := b.participantLocked(w, r.PathValue("id"), u)
	if !ok {
		return
	}
	body := strings.TrimSpace(req.Message)
	if body == "" {
		fieldDetail(w, "message", "Message cannot be empty")
		return
	}
	if c.Status == model.ClaimStatusRejected {
		detail(w, http.StatusBadRequest, "Conversation is closed")
		return
	}
	m := model.Message{
		ID: b.nextIDLocked("msg-"), ClaimRequestID: c.ID, SenderID: u.ID,
		Body: body, CreatedAt: b.nowLocked(), SenderName: u.DisplayName(),
	}
	b.messages[c.ID] = append(b.messages[c.ID], m)
	respond(w, http.StatusOK, m)
}

func (b *Backend) markRead(w http.ResponseWriter, r *http.Request, u *model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, _, ok := b.participantLocked(w, r.PathValue("id"), u)
	if !ok {
		return
	}
	msgs := b.messages[c.ID]
	for i := range msgs {
		if msgs[i].SenderID != u.ID {
			msgs[i].IsRead = true
		}
	}
	respond(w, http.StatusOK, map[string]string{"message": "Conversation marked as read"})
}

func (b *Backend) adminStats(w http.ResponseWriter, r *http.Request, u *model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := model.AdminStats{TotalUsers: len(b.users), TotalItems: len(b.items)}
	for _, it := range b.items {
		switch it.Status {
		case model.ItemStatusActive:
			s.ActiveItems++
		case model.ItemStatusResolved:
			s.ResolvedItems++
		}
	}
	for _, c := range b.claims {
		if c.Status == model.ClaimStatusPending {
			s.PendingClaims++
		}
	}
	if s.TotalItems > 0 {
		s.SuccessRate = float64(s.ResolvedItems) / float64(s.TotalItems) * 100
	}
	respond(w, http.StatusOK, s)
}

func (b *Backend) adminItems(w http.ResponseWriter, r *http.Request, u *model.User) {
	q := r.URL.Query()
	b.mu.Lock()
	items := []model.Item{}
	for _, it := range b.items {
		if q.Get("status") != "" && it.Status != q.Get("status") {
			continue
		}
		if q.Get("flagged_only") == "true" && !it.Flagged {
			continue
		}
		items = append(items, *it)
	}
	b.mu.Unlock()
	sortItems(items)
	respond(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (b *Backend) moderate(w http.ResponseWriter, r *http.Request, u *model.User) {
	var req struct {
		Action string `json:"action"`
		Note   string `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[r.PathValue("id")]
	if !ok {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}
	switch req.Action {
	case model.ModerateApprove:
		it.Status = model.ItemStatusActive
		it.Flagged = false
	case model.ModerateReject, model.ModerateArchive:
		it.Status = model.ItemStatusArchived
	default:
		detail(w, http.StatusBadRequest, "Invalid action")
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Item %sd successfully", req.Action)})
}

func (b *Backend) deleteItem(w http.ResponseWriter, r *http.Request, u *model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := b.items[id]; !ok {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}
	delete(b.items, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) adminClaims(w http.ResponseWriter, r *http.Request, u *model.User) {
	status := r.URL.Query().Get("status")
	b.mu.Lock()
	claims := []model.ClaimRequest{}
	for _, c := range b.claims {
		if status != "" && c.Status != status {
			continue
		}
		claims = append(claims, b.joinClaimLocked(c))
	}
	b.mu.Unlock()
	sort.Slice(claims, func(i, j int) bool { return claims[i].ID < claims[j].ID })
	respond(w, http.StatusOK, map[string]any{"claims": claims, "total": len(claims)})
}

func (b *Backend) adminUpdateClaim(w http.ResponseWriter, r *http.Request, u *model.User) {
	var req model.ClaimUpdate
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.claims[r.PathValue("id")]
	if !ok {
		detail(w, http.StatusNotFound, "Claim not found")
		return
	}
	c.Status = req.Status
	c.AdminNotes = req.AdminNotes
	c.UpdatedAt = b.nowLocked()
	respond(w, http.StatusOK, map[string]string{"message": "Claim updated successfully"})
}

func (b *Backend) adminUsers(w http.ResponseWriter, r *http.Request, u *model.User) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	b.mu.Lock()
	users := []model.User{}
	for _, usr := range b.users {
		if search != "" && !strings.Contains(strings.ToLower(usr.DisplayName()+" "+usr.Email), search) {
			continue
		}
		users = append(users, *usr)
	}
	b.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	respond(w, http.StatusOK, map[string]any{"users": users, "total": len(users)})
}

func sortItems(items []model.Item) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"detail": msg})
}

func fieldDetail(w http.ResponseWriter, field, msg string) {
	respond(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body", field}, "msg": msg, "type": "value_error"}},
	})
}
