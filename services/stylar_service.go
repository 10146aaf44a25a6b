package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

// Feed selects how the stylar list is filtered and ordered.
type Feed string

const (
	FeedAll       Feed = "all"
	FeedTrending  Feed = "trending"
	FeedNew       Feed = "new"
	FeedHighValue Feed = "high-value"
)

// ParseFeed accepts "" as FeedAll.
func ParseFeed(raw string) (Feed, error) {
	switch f := Feed(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FeedAll, nil
	case FeedAll, FeedTrending, FeedNew, FeedHighValue:
		return f, nil
	default:
		return "", invalid("feed", fmt.Sprintf("unknown feed %q", raw))
	}
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type StylarService struct {
	Store    storage.Store
	Uploader ImageUploader
	Clock    Clock
	Badges   *BadgeService
	Log      *logrus.Entry
}

func NewStylarService(store storage.Store, uploader ImageUploader) *StylarService {
	return &StylarService{
		Store:    store,
		Uploader: uploader,
		Log:      logrus.WithField("service", "stylar"),
	}
}

// List returns the stylars of a feed.
func (s *StylarService) List(ctx context.Context, feed Feed) ([]models.Stylar, error) {
	all, err := s.Store.ListStylars(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stylars: %w", err)
	}

	switch feed {
	case FeedTrending:
		sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	case FeedNew:
		sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	case FeedHighValue:
		out := all[:0]
		for _, st := range all {
			if st.Value >= models.HighValueThreshold {
				out = append(out, st)
			}
		}
		all = out
		sort.SliceStable(all, func(i, j int) bool { return all[i].Value > all[j].Value })
	}
	return all, nil
}

func (s *StylarService) Get(ctx context.Context, id string) (models.Stylar, error) {
	return s.Store.GetStylar(ctx, id)
}

type CreateStylarInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Style       string   `json:"style"`
	Images      []string `json:"images"`
}

func (in *CreateStylarInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Style = models.NormalizeStyle(in.Style)

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	in.Images = images

	switch {
	case in.Name == "":
		return invalid("name", "is required")
	case in.Description == "":
		return invalid("description", "is required")
	case in.Style == "":
		return invalid("style", "is required")
	case !models.IsKnownStyle(in.Style):
		return invalid("style", fmt.Sprintf("unknown style %q", in.Style))
	case len(in.Images) == 0:
		return invalid("images", "at least one image is required")
	}
	return nil
}

// Create publishes a new stylar owned by creatorID with the starting value and score.
func (s *StylarService) Create(ctx context.Context, creatorID string, in CreateStylarInput) (models.Stylar, error) {
	if err := in.normalize(); err != nil {
		return models.Stylar{}, err
	}

	st, err := s.Store.CreateStylar(ctx, models.Stylar{
		Name:        in.Name,
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		Style:       in.Style,
		Images:      in.Images,
		Value:       models.DefaultStylarValue,
		Score:       models.DefaultStylarScore,
		CreatorID:   creatorID,
		Timestamps:  models.Timestamps{CreatedAt: s.Clock.now()},
	})
	if err != nil {
		return models.Stylar{}, fmt.Errorf("create stylar: %w", err)
	}
	s.Log.WithFields(logrus.Fields{"stylar_id": st.ID, "creator_id": creatorID}).
		Infof("✨ Stylar created: %s", st.Name)
	s.Badges.Refresh(ctx, creatorID)
	return st, nil
}

// UpdateValue overwrites the market value of a stylar.
func (s *StylarService) UpdateValue(ctx context.Context, id string, value int64) (models.Stylar, error) {
	if value < 0 {
		return models.Stylar{}, invalid("value", "must not be negative")
	}
	var out models.Stylar
	err := s.Store.Atomic(ctx, func(tx storage.Store) error {
		st, err := tx.GetStylar(ctx, id)
		if err != nil {
			return err
		}
		st.Value = value
		out, err = tx.UpdateStylar(ctx, st)
		return err
	})
	if err != nil {
		return models.Stylar{}, err
	}
	s.Badges.Refresh(ctx, out.CreatorID)
	return out, nil
}

func (s *StylarService) Delete(ctx context.Context, id string) error {
	if err := s.Store.DeleteStylar(ctx, id); err != nil {
		return err
	}
	s.Log.WithField("stylar_id", id).Info("🗑️ Stylar deleted")
	return nil
}

// AttachImage uploads an image and appends its URL to the stylar.
func (s *StylarService) AttachImage(ctx context.Context, id, filename, contentType string, body io.Reader) (models.Stylar, error) {
	if s.Uploader == nil {
		return models.Stylar{}, fmt.Errorf("image uploads are not configured")
	}
	if _, err := s.Store.GetStylar(ctx, id); err != nil {
		return models.Stylar{}, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return models.Stylar{}, invalid("image", fmt.Sprintf("unsupported file type %q", ext))
	}
	key := fmt.Sprintf("stylars/%s/%s%s", id, uuid.NewString(), ext)
	url, err := s.Uploader.Upload(ctx, key, body, contentType)
	if err != nil {
		return models.Stylar{}, fmt.Errorf("upload image: %w", err)
	}

	var out models.Stylar
	err = s.Store.Atomic(ctx, func(tx storage.Store) error {
		st, err := tx.GetStylar(ctx, id)
		if err != nil {
			return err
		}
		st.Images = append(st.Images, url)
		out, err = tx.UpdateStylar(ctx, st)
		return err
	})
	return out, err
}

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}
