package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/fortis-steel/chatbot-api/internal/contact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formspreeServer(t *testing.T, status int, got *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		*got = r.PostForm
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewFormspreeNotifier_NilWithoutEndpoint(t *testing.T) {
	assert.Nil(t, NewFormspreeNotifier(FormspreeConfig{Endpoint: "  "}, nil, nil))
}

func TestFormspreeNotifier_SendFull(t *testing.T) {
	var form url.Values
	srv := formspreeServer(t, http.StatusOK, &form)
	n := NewFormspreeNotifier(FormspreeConfig{Endpoint: srv.URL, ReplyTo: "bot@fortissteelbot.com"}, srv.Client(), nil)

	require.NoError(t, n.SendFull(context.Background(), sampleLead()))
	assert.Equal(t, "bot@fortissteelbot.com", form.Get("_replyto"))
	assert.Equal(t, "🎯 ПОЛНАЯ ЗАЯВКА Fortis: 75,000 руб.", form.Get("_subject"))
	assert.Equal(t, "75,000 руб.", form.Get("amount"))
	assert.Equal(t, "+79161234567", form.Get("phone"))
	assert.Equal(t, "client@example.com", form.Get("client_email"))
	assert.Equal(t, "2026-03-04 10:15:00", form.Get("timestamp"))
	assert.Equal(t, "full_application", form.Get("type"))
	assert.Empty(t, form.Get("missing_data"))
}

func TestFormspreeNotifier_SendIncomplete(t *testing.T) {
	var form url.Values
	srv := formspreeServer(t, http.StatusOK, &form)
	n := NewFormspreeNotifier(FormspreeConfig{Endpoint: srv.URL}, srv.Client(), nil)

	lead := sampleLead()
	lead.Phone = contact.Value{}
	lead.Reason = "Таймаут 10 минут"
	require.NoError(t, n.SendIncomplete(context.Background(), lead))
	assert.Equal(t, "⚠️ НЕПОЛНАЯ ЗАЯВКА Fortis: 75,000 руб. (нет телефона)", form.Get("_subject"))
	assert.Equal(t, MissingMarker, form.Get("phone"))
	assert.Equal(t, "телефона", form.Get("missing_data"))
	assert.Equal(t, "incomplete_application", form.Get("type"))
	assert.Equal(t, "Таймаут 10 минут", form.Get("reason"))
	assert.Empty(t, form.Get("_replyto"))
}

func TestFormspreeNotifier_OnlyOKIsSuccess(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError} {
		var form url.Values
		srv := formspreeServer(t, status, &form)
		n := NewFormspreeNotifier(FormspreeConfig{Endpoint: srv.URL}, srv.Client(), nil)
		assert.Error(t, n.SendFull(context.Background(), sampleLead()), "status %d", status)
	}
}

func TestFormspreeNotifier_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	n := NewFormspreeNotifier(FormspreeConfig{Endpoint: endpoint}, nil, nil)
	assert.Error(t, n.SendFull(context.Background(), sampleLead()))
}
