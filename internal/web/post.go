package web

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/store"
)

// Post wizard limits.
const (
	wizardSteps = 4
	MaxImages   = 5
	maxPostBody = MaxImages*imaging.MaxUploadSize + 1<<20
)

// stepFields lists the form fields each wizard step owns.
var stepFields = [wizardSteps + 1][]string{
	1: {"title", "category"},
	2: {"description", "location", "date_lost", "time_lost", "condition"},
	3: {"images"},
	4: {"contact_preference", "reward", "urgency", "storage_location"},
}

var stepNames = []string{"Basics", "Details", "Photos", "Contact"}

// stepOf returns the wizard step that owns field, or the last step.
func stepOf(field string) int {
	for step := 1; step <= wizardSteps; step++ {
		if slices.Contains(stepFields[step], field) {
			return step
		}
	}
	return wizardSteps
}

// validateStep checks the fields of one step. A step may advance only when
// this returns no errors.
func validateStep(kind string, step int, d model.ItemDraft) map[string]string {
	d.Type = kind
	d.Normalize()

	errs := make(map[string]string)
	var verr *model.ValidationError
	if err := model.Validate(&d); errors.As(err, &verr) {
		for _, f := range verr.Fields {
			if slices.Contains(stepFields[step], f.Field) {
				errs[f.Field] = f.Message
			}
		}
	}

	switch step {
	case 2:
		if d.DateLost == "" {
			errs["date_lost"] = "is required"
		}
		if kind == model.ItemTypeFound && d.Condition == "" {
			errs["condition"] = "is required"
		}
	case 3:
		if len(d.Images) > MaxImages {
			errs["images"] = fmt.Sprintf("at most %d photos are allowed", MaxImages)
		}
	case 4:
		if kind == model.ItemTypeFound && strings.TrimSpace(d.StorageLocation) == "" {
			errs["storage_location"] = "is required"
		}
	}
	return errs
}

// applyStep copies the submitted fields of one step into the draft. Values
// that cannot be parsed are left out and reported by field.
func applyStep(kind string, step int, form url.Values, d *model.ItemDraft) map[string]string {
	errs := make(map[string]string)
	switch step {
	case 1:
		d.Title = strings.TrimSpace(form.Get("title"))
		d.Category = form.Get("category")
	case 2:
		d.Description = strings.TrimSpace(form.Get("description"))
		d.Location = strings.TrimSpace(form.Get("location"))
		d.DateLost = form.Get("date_lost")
		d.TimeLost = form.Get("time_lost")
		if kind == model.ItemTypeFound {
			d.Condition = form.Get("condition")
		}
	case 4:
		d.ContactPreference = form.Get("contact_preference")
		if kind == model.ItemTypeLost {
			d.Reward = 0
			if raw := strings.TrimSpace(form.Get("reward")); raw != "" {
				reward, err := strconv.Atoi(raw)
				if err != nil {
					errs["reward"] = "must be a whole number"
				} else {
					d.Reward = reward
				}
			}
			d.Urgency = form.Get("urgency")
		} else {
			d.StorageLocation = strings.TrimSpace(form.Get("storage_location"))
		}
	}
	return errs
}

type postPage struct {
	PageData
	Kind       string
	Step       int
	Steps      []string
	Draft      model.ItemDraft
	Categories []model.Category
	Locations  []string
	Conditions []string
	MaxImages  int
}

func (srv *Server) renderPost(w http.ResponseWriter, status int, s *session.Session, d *store.Draft, p *postPage) {
	title := "Report a lost item"
	if d.Kind == model.ItemTypeFound {
		title = "Report a found item"
	}
	p.PageData.Title = title
	p.PageData.Session = s
	p.Kind = d.Kind
	p.Step = d.Step
	p.Steps = stepNames
	p.Draft = d.Item
	p.Categories = model.Categories
	p.Locations = model.Locations
	p.Conditions = model.Conditions
	p.MaxImages = MaxImages
	srv.Templates.Render(w, status, "post.html", p)
}

func (srv *Server) loadDraft(r *http.Request, s *session.Session, kind string) (*store.Draft, error) {
	d, err := store.GetDraft(r.Context(), srv.DB, s.ID, kind)
	if err != nil || d != nil {
		return d, err
	}
	return &store.Draft{
		Kind: kind,
		Step: 1,
		Item: model.ItemDraft{
			Type:              kind,
			Urgency:           model.UrgencyMedium,
			ContactPreference: model.ContactEmail,
			Images:            []string{},
		},
	}, nil
}

// PostPage handles GET /post-lost and GET /post-found.
func (srv *Server) PostPage(kind string) pageHandler {
	return func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		d, err := srv.loadDraft(r, s, kind)
		if err != nil {
			slog.Error("failed to load draft", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		srv.renderPost(w, http.StatusOK, s, d, &postPage{})
	}
}

// PostSubmit handles POST /post-lost and POST /post-found. The action field
// moves the wizard: back, next, upload, remove:<index> or cancel. Next on the
// last step creates the item.
func (srv *Server) PostSubmit(kind string) pageHandler {
	return func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		r.Body = http.MaxBytesReader(w, r.Body, maxPostBody)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
				return
			}
		} else if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		d, err := srv.loadDraft(r, s, kind)
		if err != nil {
			slog.Error("failed to load draft", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		action, arg, _ := strings.Cut(r.FormValue("action"), ":")
		if action == "cancel" {
			if err := store.DeleteDraft(r.Context(), srv.DB, s.ID, kind); err != nil {
				slog.Error("failed to delete draft", "error", err)
			}
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		parseErrs := applyStep(kind, d.Step, r.PostForm, &d.Item)
		p := &postPage{}
		status := http.StatusOK

		switch action {
		case "back":
			if d.Step > 1 {
				d.Step--
			}
		case "upload":
			p.Fields = srv.uploadImages(r, s, d, r.MultipartForm)
			if len(p.Fields) > 0 {
				p.Error = "Some photos could not be added."
				status = http.StatusBadRequest
			}
		case "remove":
			if i, err := strconv.Atoi(arg); err == nil && i >= 0 && i < len(d.Item.Images) {
				d.Item.Images = slices.Delete(d.Item.Images, i, i+1)
			}
		default:
			errs := validateStep(kind, d.Step, d.Item)
			maps.Copy(errs, parseErrs)
			if len(errs) > 0 {
				p.Error = "Please check the highlighted fields."
				p.Fields = errs
				status = http.StatusBadRequest
				break
			}
			if d.Step < wizardSteps {
				d.Step++
				break
			}
			srv.createItem(w, r, s, d)
			return
		}

		if err := store.SaveDraft(r.Context(), srv.DB, s.ID, d); err != nil {
			slog.Error("failed to save draft", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		srv.renderPost(w, status, s, d, p)
	}
}

// uploadImages sends each attached photo to the backend and records the
// returned URLs on the draft. Rejected files are reported by name.
func (srv *Server) uploadImages(r *http.Request, s *session.Session, d *store.Draft, form *multipart.Form) map[string]string {
	if form == nil || len(form.File["images"]) == 0 {
		return map[string]string{"images": "choose at least one photo"}
	}

	var problems []string
	for _, fh := range form.File["images"] {
		if len(d.Item.Images) >= MaxImages {
			problems = append(problems, fmt.Sprintf("at most %d photos are allowed", MaxImages))
			break
		}
		f, err := fh.Open()
		if err != nil {
			problems = append(problems, fh.Filename+": could not be read")
			continue
		}
		up, err := srv.api(s).UploadImage(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
		f.Close()
		if err != nil {
			var cerr *client.Error
			if errors.As(err, &cerr) && cerr.Kind == client.KindValidation {
				problems = append(problems, cerr.Message)
			} else {
				problems = append(problems, fh.Filename+": "+describeError(err).Message)
			}
			continue
		}
		link := up.PublicURL
		if link == "" {
			link = up.URL
		}
		d.Item.Images = append(d.Item.Images, link)
	}

	if len(problems) == 0 {
		return nil
	}
	return map[string]string{"images": strings.Join(problems, "; ")}
}

// createItem posts the finished draft. Backend validation failures send the
// user back to the step that owns the offending field.
func (srv *Server) createItem(w http.ResponseWriter, r *http.Request, s *session.Session, d *store.Draft) {
	d.Item.Type = d.Kind
	item, err := srv.api(s).CreateItem(r.Context(), d.Item)
	if err != nil {
		a := describeError(err)
		if a.Kind == client.KindUnauthorized {
			srv.toLogin(w, r)
			return
		}
		for field := range a.Fields {
			d.Step = min(d.Step, stepOf(field))
		}
		if err := store.SaveDraft(r.Context(), srv.DB, s.ID, d); err != nil {
			slog.Error("failed to save draft", "error", err)
		}
		status := http.StatusBadRequest
		if a.Banner {
			status = http.StatusBadGateway
		}
		srv.renderPost(w, status, s, d, &postPage{PageData: PageData{Error: a.Message, Fields: a.Fields}})
		return
	}

	if err := store.DeleteDraft(r.Context(), srv.DB, s.ID, d.Kind); err != nil {
		slog.Error("failed to delete draft", "error", err)
	}
	slog.Info("item posted", "user", s.UserID(), "item", item.ID, "type", item.Type)
	http.Redirect(w, r, "/item/"+url.PathEscape(item.ID)+"?posted=1", http.StatusSeeOther)
}
