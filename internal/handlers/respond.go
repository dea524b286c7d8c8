package handlers

import (
	"log"
	"net/http"

	"github.com/senyabanana/repair-quotes/internal/auth"
	"github.com/senyabanana/repair-quotes/internal/utils"
)

// identity достает вызывающего из контекста; без него отвечает 401.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "authorization required")
	}
	return id, ok
}

// fail логирует ошибку сервиса и отправляет ее клиенту.
func fail(logger *log.Logger, w http.ResponseWriter, err error, fallback string) {
	logger.Println(err)
	utils.SendError(w, err, fallback)
}

func respond(logger *log.Logger, w http.ResponseWriter, v any) {
	if err := utils.SendJSON(w, http.StatusOK, v); err != nil {
		logger.Println(err)
	}
}
