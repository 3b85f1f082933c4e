package sdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxProofSize bounds an uploaded evidence file.
const MaxProofSize = 64 << 20

// CommentInput is a new moderation comment.
type CommentInput struct {
	BanID   int64  `json:"ban_id" validate:"required,gt=0"`
	Content string `json:"content" validate:"required,max=2000"`
}

// ProofInput attaches evidence that is already hosted somewhere.
type ProofInput struct {
	BanID int64     `json:"ban_id" validate:"required,gt=0"`
	URL   string    `json:"url" validate:"required,url"`
	Type  ProofType `json:"type" validate:"required,oneof=image video"`
}

// ProofUpload is an evidence file to upload.
type ProofUpload struct {
	BanID    int64
	Filename string
	Content  io.Reader
}

// ProgressFunc reports upload progress in bytes. total is the size of the
// encoded request body, which includes the multipart framing around the file.
type ProgressFunc func(sent, total int64)

// ListBans returns one page of bans, optionally filtered by a search string.
func (c *Client) ListBans(ctx context.Context, page int, search string) (*BanPage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("search", search)

	var result BanPage
	if err := c.get(ctx, "/api/bans", query, &result); err != nil {
		return withFallback(ctx, c, "ListBans", err, func(p DataProvider) (*BanPage, error) {
			return p.Bans(ctx, page, search)
		})
	}
	result.Page = page
	result.TotalPages = TotalPages(result.Total)
	return &result, nil
}

// GetBan returns a single ban.
func (c *Client) GetBan(ctx context.Context, id int64) (*Ban, error) {
	var ban Ban
	if err := c.get(ctx, fmt.Sprintf("/api/bans/%d", id), nil, &ban); err != nil {
		return nil, err
	}
	return &ban, nil
}

// BanProofs lists the evidence attached to a ban.
func (c *Client) BanProofs(ctx context.Context, banID int64) ([]Proof, error) {
	var proofs []Proof
	if err := c.get(ctx, fmt.Sprintf("/api/bans/%d/proofs", banID), nil, &proofs); err != nil {
		return nil, err
	}
	return proofs, nil
}

// BanComments lists the moderation comments on a ban.
func (c *Client) BanComments(ctx context.Context, banID int64) ([]Comment, error) {
	var comments []Comment
	if err := c.get(ctx, fmt.Sprintf("/api/bans/%d/comments", banID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// BanDetails fetches a ban with its proofs and comments. When the detail calls
// fail the ban is returned with whatever it embedded.
func (c *Client) BanDetails(ctx context.Context, id int64) (*Ban, error) {
	ban, err := c.GetBan(ctx, id)
	if err != nil {
		return nil, err
	}

	proofs, err := c.BanProofs(ctx, id)
	if err != nil {
		if IsSessionEnded(err) {
			return nil, err
		}
		c.logger.Warn().Err(err).Int64("ban_id", id).Msg("failed to fetch ban proofs")
		return ban, nil
	}
	comments, err := c.BanComments(ctx, id)
	if err != nil {
		if IsSessionEnded(err) {
			return nil, err
		}
		c.logger.Warn().Err(err).Int64("ban_id", id).Msg("failed to fetch ban comments")
		return ban, nil
	}

	ban.Proofs = proofs
	ban.Comments = comments
	return ban, nil
}

// AddBanComment posts a moderation comment.
func (c *Client) AddBanComment(ctx context.Context, input CommentInput) (*Comment, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := c.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}

	var comment Comment
	if err := c.sendJSON(ctx, http.MethodPost, "/api/bans/comment", input, &comment); err != nil {
		return withFallback(ctx, c, "AddBanComment", err, func(p DataProvider) (*Comment, error) {
			return p.Comment(ctx, c.actor(ctx), input)
		})
	}
	return &comment, nil
}

// DeleteBanComment removes a moderation comment.
func (c *Client) DeleteBanComment(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/bans/comment/%d", id), nil, nil)
}

// AddBanProof attaches evidence by URL.
func (c *Client) AddBanProof(ctx context.Context, input ProofInput) (*Proof, error) {
	if err := c.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid proof: %w", err)
	}

	var proof Proof
	if err := c.sendJSON(ctx, http.MethodPost, "/api/bans/proof", input, &proof); err != nil {
		return withFallback(ctx, c, "AddBanProof", err, func(p DataProvider) (*Proof, error) {
			return p.Proof(ctx, c.actor(ctx), input)
		})
	}
	return &proof, nil
}

// UploadBanProof uploads an evidence file as multipart form data. progress, if
// not nil, is called as the body is sent.
func (c *Client) UploadBanProof(ctx context.Context, upload ProofUpload, progress ProgressFunc) (*Proof, error) {
	if upload.BanID <= 0 {
		return nil, fmt.Errorf("invalid proof: ban id is required")
	}
	if upload.Content == nil {
		return nil, fmt.Errorf("invalid proof: file content is required")
	}

	data, err := io.ReadAll(io.LimitReader(upload.Content, MaxProofSize+1))
	if err != nil {
		return nil, fmt.Errorf("read proof file: %w", err)
	}
	if len(data) > MaxProofSize {
		return nil, fmt.Errorf("proof file exceeds %d bytes", MaxProofSize)
	}
	proofType, err := DetectProofType(upload.Filename, data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(upload.Filename))
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := form.WriteField("ban_id", strconv.FormatInt(upload.BanID, 10)); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	body := buf.Bytes()
	req, err := c.newRequest(ctx, http.MethodPost, "/api/bans/proof/upload", nil, nil, form.FormDataContentType())
	if err != nil {
		return nil, err
	}
	newBody := func() io.ReadCloser {
		return io.NopCloser(&progressReader{r: bytes.NewReader(body), total: int64(len(body)), fn: progress})
	}
	req.Body = newBody()
	req.GetBody = func() (io.ReadCloser, error) { return newBody(), nil }
	req.ContentLength = int64(len(body))

	var proof Proof
	if err := c.do(req, &proof); err != nil {
		return withFallback(ctx, c, "UploadBanProof", err, func(p DataProvider) (*Proof, error) {
			if progress != nil {
				progress(int64(len(body)), int64(len(body)))
			}
			return p.Proof(ctx, c.actor(ctx), ProofInput{
				BanID: upload.BanID,
				URL:   "file://" + filepath.Base(upload.Filename),
				Type:  proofType,
			})
		})
	}
	return &proof, nil
}

// DeleteBanProof removes an evidence attachment.
func (c *Client) DeleteBanProof(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/bans/proof/%d", id), nil, nil)
}

// DetectProofType classifies an evidence file from its content, falling back
// to the file extension.
func DetectProofType(filename string, data []byte) (ProofType, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType := http.DetectContentType(head)
	if contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			contentType = byExt
		}
	}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return ProofImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return ProofVideo, nil
	default:
		return "", fmt.Errorf("unsupported proof file type %s", contentType)
	}
}

type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}
