package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/notify"
)

type notificationReq struct {
	UserID   string                      `json:"userId"`
	Title    string                      `json:"title"`
	Message  string                      `json:"message"`
	Category models.NotificationCategory `json:"category"`
}

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request) {
	c := models.NotificationCategory(r.URL.Query().Get("category"))
	list, err := a.Notify.List(r.Context(), identity(r).ID, c)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) sendNotification(w http.ResponseWriter, r *http.Request) {
	a.dispatch(w, r, false)
}

func (a *API) broadcastNotification(w http.ResponseWriter, r *http.Request) {
	a.dispatch(w, r, true)
}

func (a *API) dispatch(w http.ResponseWriter, r *http.Request, broadcast bool) {
	var req notificationReq
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	to := notify.Target{UserID: req.UserID, Broadcast: broadcast}
	sent, err := a.Notify.Notify(r.Context(), to, req.Title, req.Message, req.Category)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if broadcast {
		writeJSON(w, http.StatusCreated, map[string]int{"sent": len(sent)})
		return
	}
	writeJSON(w, http.StatusCreated, sent[0])
}

func (a *API) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := a.Notify.MarkRead(r.Context(), identity(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) deleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := a.Notify.Delete(r.Context(), identity(r).ID, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) notificationSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.Notify.Settings(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) updateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var p notify.SettingsPatch
	if err := decode(r, &p); err != nil {
		a.writeError(w, r, err)
		return
	}
	s, err := a.Notify.UpdateSettings(r.Context(), identity(r).ID, p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) resetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.Notify.ResetSettings(r.Context(), identity(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
