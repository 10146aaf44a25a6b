package remote

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/tidwall/gjson"

	"stylar-exchange/models"
)

// Table names and column lists as they exist on the hosted backend.
type tableSpec struct {
	name   string
	fields []string
	refs   []string
}

var (
	stylarTable = tableSpec{
		name:   "stylar",
		fields: []string{"Name", "Tags", "images", "style", "value", "score", "created", "description"},
		refs:   []string{"creatorId"},
	}
	userTable = tableSpec{
		name:   "app_User",
		fields: []string{"Name", "username", "stylecoins", "ownedStylars", "badges"},
	}
	challengeTable = tableSpec{
		name:   "challenge",
		fields: []string{"Name", "Tags", "theme", "description", "startDate", "endDate", "submissions", "finalized"},
		refs:   []string{"winnerStylarId"},
	}
	battleTable = tableSpec{
		name:   "battle",
		fields: []string{"Name", "Tags", "votes1", "votes2", "voters"},
		refs:   []string{"stylar1Id", "stylar2Id"},
	}
	investmentTable = tableSpec{
		name:   "investment",
		fields: []string{"Name", "amount", "date"},
		refs:   []string{"stylarId", "userId"},
	}
)

func (t tableSpec) query(where ...Condition) Query {
	q := Query{Where: where}
	for _, f := range t.fields {
		q.Fields = append(q.Fields, fieldSpec{Field: fieldName{Name: f}})
	}
	for _, r := range t.refs {
		q.Fields = append(q.Fields, fieldSpec{
			Field:          fieldName{Name: r},
			ReferenceField: &fieldSpec{Field: fieldName{Name: "Name"}},
		})
	}
	return q
}

// ref is a record id on the wire. The backend sends numeric ids, and reference
// columns may be expanded to {"Id": 3, "Name": "..."} objects.
type ref string

func (r *ref) UnmarshalJSON(b []byte) error {
	v := gjson.ParseBytes(b)
	if v.IsObject() {
		v = v.Get("Id")
	}
	switch v.Type {
	case gjson.Null:
		*r = ""
	case gjson.Number:
		*r = ref(strconv.FormatInt(v.Int(), 10))
	default:
		*r = ref(v.String())
	}
	return nil
}

func (r ref) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(r), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(r))
}

// list is a comma-joined column holding ids or urls.
type list []string

func (l *list) UnmarshalJSON(b []byte) error {
	v := gjson.ParseBytes(b)
	if v.IsArray() {
		out := make([]string, 0)
		for _, item := range v.Array() {
			if s := item.String(); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	*l = models.ParseList(v.String())
	return nil
}

func (l list) MarshalJSON() ([]byte, error) {
	return json.Marshal(models.JoinList(l))
}

func (l list) strings() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

type stylarRecord struct {
	ID          ref       `json:"Id,omitempty"`
	Name        string    `json:"Name"`
	Images      list      `json:"images"`
	Style       string    `json:"style"`
	Value       int64     `json:"value"`
	Score       int64     `json:"score"`
	Created     time.Time `json:"created"`
	Description string    `json:"description"`
	CreatorID   ref       `json:"creatorId"`
}

func stylarToRecord(s models.Stylar) stylarRecord {
	return stylarRecord{
		ID:          ref(s.ID),
		Name:        s.Name,
		Images:      list(s.Images),
		Style:       s.Style,
		Value:       s.Value,
		Score:       s.Score,
		Created:     s.CreatedAt,
		Description: s.Description,
		CreatorID:   ref(s.CreatorID),
	}
}

func (r stylarRecord) model() models.Stylar {
	s := models.Stylar{
		ID:          string(r.ID),
		Name:        r.Name,
		Slug:        slug.Make(r.Name),
		Description: r.Description,
		Style:       r.Style,
		Images:      r.Images.strings(),
		Value:       r.Value,
		Score:       r.Score,
		CreatorID:   string(r.CreatorID),
	}
	s.CreatedAt = r.Created
	s.UpdatedAt = r.Created
	return s
}

type userRecord struct {
	ID           ref    `json:"Id,omitempty"`
	Name         string `json:"Name"`
	Username     string `json:"username"`
	StyleCoins   int64  `json:"stylecoins"`
	OwnedStylars list   `json:"ownedStylars"`
	Badges       list   `json:"badges"`
}

func userToRecord(u models.User) userRecord {
	return userRecord{
		ID:           ref(u.ID),
		Name:         u.Username,
		Username:     u.Username,
		StyleCoins:   u.StyleCoins,
		OwnedStylars: list(u.OwnedStylars),
		Badges:       list(u.Badges),
	}
}

func (r userRecord) model() models.User {
	username := r.Username
	if username == "" {
		username = r.Name
	}
	return models.User{
		ID:           string(r.ID),
		Username:     username,
		StyleCoins:   r.StyleCoins,
		OwnedStylars: r.OwnedStylars.strings(),
		Badges:       r.Badges.strings(),
	}
}

type challengeRecord struct {
	ID             ref       `json:"Id,omitempty"`
	Name           string    `json:"Name"`
	Theme          string    `json:"theme"`
	Description    string    `json:"description"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Submissions    list      `json:"submissions"`
	Finalized      bool      `json:"finalized"`
	WinnerStylarID ref       `json:"winnerStylarId"`
}

func challengeToRecord(c models.Challenge) challengeRecord {
	return challengeRecord{
		ID:             ref(c.ID),
		Name:           c.Name,
		Theme:          c.Theme,
		Description:    c.Description,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Submissions:    list(c.Submissions),
		Finalized:      c.Finalized,
		WinnerStylarID: ref(c.WinnerStylarID),
	}
}

func (r challengeRecord) model() models.Challenge {
	name := r.Name
	if name == "" {
		name = r.Theme
	}
	return models.Challenge{
		ID:             string(r.ID),
		Name:           name,
		Theme:          r.Theme,
		Slug:           slug.Make(r.Theme),
		Description:    r.Description,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		Submissions:    r.Submissions.strings(),
		Finalized:      r.Finalized,
		WinnerStylarID: string(r.WinnerStylarID),
	}
}

type battleRecord struct {
	ID        ref    `json:"Id,omitempty"`
	Name      string `json:"Name"`
	Stylar1ID ref    `json:"stylar1Id"`
	Stylar2ID ref    `json:"stylar2Id"`
	Votes1    int64  `json:"votes1"`
	Votes2    int64  `json:"votes2"`
	Voters    list   `json:"voters"`
}

func battleToRecord(b models.Battle) battleRecord {
	return battleRecord{
		ID:        ref(b.ID),
		Name:      b.Name,
		Stylar1ID: ref(b.Stylar1ID),
		Stylar2ID: ref(b.Stylar2ID),
		Votes1:    b.Votes1,
		Votes2:    b.Votes2,
		Voters:    list(b.Voters),
	}
}

func (r battleRecord) model() models.Battle {
	return models.Battle{
		ID:        string(r.ID),
		Name:      r.Name,
		Stylar1ID: string(r.Stylar1ID),
		Stylar2ID: string(r.Stylar2ID),
		Votes1:    r.Votes1,
		Votes2:    r.Votes2,
		Voters:    r.Voters.strings(),
	}
}

type investmentRecord struct {
	ID       ref       `json:"Id,omitempty"`
	Name     string    `json:"Name,omitempty"`
	StylarID ref       `json:"stylarId"`
	UserID   ref       `json:"userId"`
	Amount   int64     `json:"amount"`
	Date     time.Time `json:"date"`
}

func investmentToRecord(inv models.Investment) investmentRecord {
	return investmentRecord{
		ID:       ref(inv.ID),
		StylarID: ref(inv.StylarID),
		UserID:   ref(inv.UserID),
		Amount:   inv.Amount,
		Date:     inv.Date,
	}
}

func (r investmentRecord) model() models.Investment {
	return models.Investment{
		ID:       string(r.ID),
		StylarID: string(r.StylarID),
		UserID:   string(r.UserID),
		Amount:   r.Amount,
		Date:     r.Date,
	}
}
