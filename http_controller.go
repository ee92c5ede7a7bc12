package contacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// maxAvatarBytes caps uploads before they reach the object store.
const maxAvatarBytes = 5 << 20

// AvatarUploader mirrors the storage.Uploader interface without importing it.
type AvatarUploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type HTTPControllerRoutes struct {
	Register     string
	Login        string
	Refresh      string
	Confirm      string
	Resend       string
	Contacts     string
	Contact      string
	UploadAvatar string
}

type HTTPController struct {
	Debug              bool
	Logger             Logger
	Repo               RepositoryManager
	Auther             Authenticator
	Codec              VerificationCodec
	Mailer             VerificationMailer
	Uploader           AvatarUploader
	Routes             *HTTPControllerRoutes
	ContextKey         string
	VerificationMaxAge time.Duration
	PhoneRegion        string
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func WithControllerLogger(l Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Auther = auther
		return c
	}
}

func WithControllerCodec(codec VerificationCodec) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Codec = codec
		return c
	}
}

func WithControllerMailer(mailer VerificationMailer) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerUploader(uploader AvatarUploader) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Uploader = uploader
		return c
	}
}

func WithControllerDebug(debug bool) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Debug = debug
		return c
	}
}

func WithVerificationMaxAge(maxAge time.Duration) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if maxAge > 0 {
			c.VerificationMaxAge = maxAge
		}
		return c
	}
}

func NewHTTPController(opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger:             defLogger{},
		ContextKey:         "user",
		VerificationMaxAge: time.Hour,
		PhoneRegion:        "US",
		Routes: &HTTPControllerRoutes{
			Register:     "/register",
			Login:        "/login",
			Refresh:      "/refresh",
			Confirm:      "/confirm/:token",
			Resend:       "/confirm/resend",
			Contacts:     "/contacts",
			Contact:      "/contacts/:id",
			UploadAvatar: "/upload_avatar",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in contacts controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in contacts controller...")
	}

	if c.Codec == nil {
		panic("Missing VerificationCodec in contacts controller...")
	}

	return c
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

func (a *HTTPController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload", "error", err)
		return RenderValidationError(c, err)
	}

	if a.Debug {
		fmt.Println("======= REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=======================")
	}

	var record *User
	req := RegisterUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(u *User) {
			record = u
		},
	}

	handler := NewRegisterUserHandler(a.Repo, a.Codec, a.Mailer).WithLogger(a.Logger)
	if err := handler.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("register execute", "error", err)
		return RenderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        record.ID,
		"email":     record.Email,
		"confirmed": record.Confirmed,
		"message":   "confirmation email sent",
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *HTTPController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(c, err)
	}

	pair, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return RenderError(c, ErrBadCredentials)
	}

	return c.JSON(pair)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *HTTPController) Refresh(c *fiber.Ctx) error {
	payload := new(RefreshRequest)

	if err := c.BodyParser(payload); err != nil {
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(c, err)
	}

	pair, err := a.Auther.Refresh(c.UserContext(), payload.RefreshToken)
	if err != nil {
		return RenderError(c, ErrUnauthenticated)
	}

	return c.JSON(pair)
}

func (a *HTTPController) Confirm(c *fiber.Ctx) error {
	token := c.Params("token")

	var record *User
	req := ConfirmAccountMessage{
		Token:  token,
		MaxAge: a.VerificationMaxAge,
		OnResponse: func(u *User) {
			record = u
		},
	}

	handler := NewConfirmAccountHandler(a.Repo, a.Codec)
	if err := handler.Execute(c.UserContext(), req); err != nil {
		a.Logger.Warn("confirm execute", "error", err)
		return RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"email":     record.Email,
		"confirmed": record.Confirmed,
		"message":   "account confirmed",
	})
}

// ResendRequest payload
type ResendRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ResendRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResendVerification responds identically for known and unknown addresses.
func (a *HTTPController) ResendVerification(c *fiber.Ctx) error {
	payload := new(ResendRequest)

	if err := c.BodyParser(payload); err != nil {
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(c, err)
	}

	handler := NewVerificationRequestHandler(a.Repo, a.Codec, a.Mailer).WithLogger(a.Logger)
	if err := handler.Execute(c.UserContext(), VerificationRequestMessage{Email: payload.Email}); err != nil {
		a.Logger.Error("resend verification execute", "error", err)
		return RenderError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "if the address is registered a confirmation email was sent",
	})
}

func (a *HTTPController) ListContacts(c *fiber.Ctx) error {
	ownerID, err := a.currentAccountID(c)
	if err != nil {
		return RenderError(c, err)
	}

	records, err := a.Repo.Contacts().ListForOwner(c.UserContext(), ownerID)
	if err != nil {
		a.Logger.Error("list contacts", "error", err)
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list contacts"))
	}

	return c.JSON(fiber.Map{
		"contacts": records,
	})
}

// ContactCreateRequest payload
type ContactCreateRequest struct {
	Name  string `form:"name" json:"name"`
	Phone string `form:"phone" json:"phone"`
}

// Validate will run validation rules
func (r ContactCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.Required, validation.Length(1, 50)),
	)
}

func (a *HTTPController) CreateContact(c *fiber.Ctx) error {
	ownerID, err := a.currentAccountID(c)
	if err != nil {
		return RenderError(c, err)
	}

	payload := new(ContactCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(c, err)
	}

	record := &Contact{
		OwnerID: ownerID,
		Name:    payload.Name,
		Phone:   NormalizePhone(payload.Phone, a.PhoneRegion),
	}

	record, err = a.Repo.Contacts().CreateOwned(c.UserContext(), record)
	if err != nil {
		a.Logger.Error("create contact", "error", err)
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create contact"))
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (a *HTTPController) DeleteContact(c *fiber.Ctx) error {
	ownerID, err := a.currentAccountID(c)
	if err != nil {
		return RenderError(c, err)
	}

	// An unparseable id behaves like an unknown contact.
	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return RenderError(c, ErrContactNotFound)
	}

	if err := a.Repo.Contacts().DeleteOwned(c.UserContext(), ownerID, contactID); err != nil {
		if !goerrors.Is(err, ErrContactNotFound) {
			a.Logger.Error("delete contact", "error", err)
			err = goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete contact")
		}
		return RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"deleted": contactID.String(),
	})
}

func (a *HTTPController) UploadAvatar(c *fiber.Ctx) error {
	ownerID, err := a.currentAccountID(c)
	if err != nil {
		return RenderError(c, err)
	}

	if a.Uploader == nil {
		return RenderError(c, goerrors.New("avatar uploads are not enabled", goerrors.CategoryOperation))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return RenderError(c, goerrors.New("avatar file is required", goerrors.CategoryBadInput).WithCode(goerrors.CodeBadRequest))
	}

	if fileHeader.Size > maxAvatarBytes {
		return RenderError(c, goerrors.New("avatar file is too large", goerrors.CategoryBadInput).WithCode(goerrors.CodeBadRequest))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open upload"))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read upload"))
	}

	if len(data) > maxAvatarBytes {
		return RenderError(c, goerrors.New("avatar file is too large", goerrors.CategoryBadInput).WithCode(goerrors.CodeBadRequest))
	}

	contentType := http.DetectContentType(data)
	key := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))

	url, err := a.Uploader.Upload(c.UserContext(), key, contentType, data)
	if err != nil {
		a.Logger.Error("avatar upload", "error", err)
		return RenderError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store avatar"))
	}

	record, err := a.Repo.Users().SetAvatarURL(c.UserContext(), ownerID, url)
	if err != nil {
		a.Logger.Error("avatar persist", "error", err)
		return RenderError(c, err)
	}

	return c.JSON(fiber.Map{
		"avatar_url": record.AvatarURL,
	})
}

// currentAccountID resolves the authenticated account from the claims the
// gate stored. Requests that somehow reach a handler without claims are
// rejected, not trusted.
func (a *HTTPController) currentAccountID(c *fiber.Ctx) (uuid.UUID, error) {
	if claims, ok := c.Locals(a.ContextKey).(AuthClaims); ok && claims != nil {
		if id, err := uuid.Parse(claims.UserID()); err == nil {
			return id, nil
		}
	}

	if id, ok := IdentityFromContext(c.UserContext()); ok {
		return id, nil
	}

	return uuid.Nil, ErrUnauthenticated
}
