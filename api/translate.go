package api

import (
	"net/http"

	"github.com/laurfratila/microblog/internal/httpx"
	"github.com/laurfratila/microblog/internal/to"
)

// TranslateCreate renders a post body into the reader's language via
// the translation collaborator.
func TranslateCreate(env *Env, w http.ResponseWriter, r *http.Request) error {
	if _, err := env.authenticate(r); err != nil {
		return err
	}
	var params struct {
		Text   string `json:"text" schema:"text"`
		Source string `json:"source" schema:"source"`
		Dest   string `json:"dest" schema:"dest"`
	}
	if err := httpx.Params(r, &params); err != nil {
		return err
	}
	text, err := env.Translator.Translate(r.Context(), params.Text, params.Source, params.Dest)
	if err != nil {
		return err
	}
	return to.JSON(w, map[string]any{"text": text})
}
