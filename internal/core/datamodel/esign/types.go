package esign

import "errors"

// SignatureRequest carries everything the provider needs to issue a document
// for signing to the auxiliary and, optionally, a second signer.
type SignatureRequest struct {
	TemplateID  string            `json:"template_id"`
	Title       string            `json:"title"`
	Signers     []Signer          `json:"signers"`
	Fields      map[string]string `json:"fields,omitempty"`
	RedirectURL string            `json:"redirect,omitempty"`
}

type Signer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignatureResponse mirrors the provider's envelope: either a document hash
// or an embedded error object.
type SignatureResponse struct {
	Data SignatureData `json:"data"`
}

type SignatureData struct {
	DocumentHash string         `json:"document_hash,omitempty"`
	Error        *ProviderError `json:"error,omitempty"`
}

type ProviderError struct {
	Type string `json:"type"`
	Info string `json:"info,omitempty"`
}

func (r *SignatureRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if len(r.Signers) == 0 {
		return errors.New("at least one signer is required")
	}
	for _, s := range r.Signers {
		if s.Email == "" {
			return errors.New("signer email is required")
		}
	}
	return nil
}
