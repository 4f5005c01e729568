package http

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	pkgredis "github.com/jhoicas/Suministros-api/pkg/redis"
)

// HeaderIdempotencyKey header opcional en entregas, traspasos y ajustes.
const HeaderIdempotencyKey = "Idempotency-Key"

const defaultIdempotencyTTL = 24 * time.Hour

// pendingTTL vida de la reserva mientras corre el handler; si el proceso cae la llave se libera sola.
const pendingTTL = time.Minute

type idempotencyRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	Body        string `json:"body,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency repite la respuesta guardada cuando llega otra vez la misma Idempotency-Key.
// Sin store (Redis deshabilitado) o sin header, la petición pasa sin cambios.
//
// La llave se reserva con SetNX antes de ejecutar el handler, así dos peticiones simultáneas
// con la misma llave no se ejecutan ambas: la segunda recibe 409 IDEMPOTENCY_IN_PROGRESS.
// Solo se guardan respuestas 2xx; ante un error la reserva se borra y el cliente puede
// reintentar con la misma llave.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("idempotency")
	return func(c *fiber.Ctx) error {
		if store == nil {
			return c.Next()
		}
		idemKey := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if idemKey == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		requestHash := hashBody(c.Body())
		key := store.IdempotencyKey(buildScope(c), idemKey)

		if done, err := replayStored(c, store, key, requestHash, log); done || err != nil {
			return err
		}

		marker, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
		if err != nil {
			return err
		}
		reserved, err := store.SetNX(ctx, key, string(marker), pendingTTL)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("reservar llave de idempotencia")
			return unavailable(c, "no se pudo reservar la llave de idempotencia")
		}
		if !reserved {
			// Otra petición ganó la reserva entre Get y SetNX.
			if done, err := replayStored(c, store, key, requestHash, log); done || err != nil {
				return err
			}
			return inProgress(c)
		}

		if err := c.Next(); err != nil {
			release(ctx, store, key, log)
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			release(ctx, store, key, log)
			return nil
		}
		payload, err := json.Marshal(idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(c.Response().Body()),
			ContentType: string(c.Response().Header.ContentType()),
			RequestHash: requestHash,
		})
		if err != nil {
			log.Error().Err(err).Msg("serializar respuesta idempotente")
			release(ctx, store, key, log)
			return nil
		}
		if err := store.Set(ctx, key, string(payload), ttl); err != nil {
			log.Error().Err(err).Str("key", key).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}

// replayStored responde desde el registro guardado en key. done=false si no hay registro.
func replayStored(c *fiber.Ctx, store pkgredis.IdempotencyStore, key, requestHash string, log *logger.Logger) (bool, error) {
	stored, err := store.Get(c.UserContext(), key)
	if err != nil && !errors.Is(err, pkgredis.ErrNil) {
		log.Error().Err(err).Str("key", key).Msg("consulta de idempotencia")
		return true, unavailable(c, "no se pudo verificar la llave de idempotencia")
	}
	if stored == "" {
		return false, nil
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		log.Error().Err(err).Str("key", key).Msg("registro de idempotencia ilegible")
		return true, unavailable(c, "registro de idempotencia inválido")
	}
	if record.RequestHash != requestHash {
		return true, c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_KEY_REUSED", Message: "la llave de idempotencia ya se usó con otro cuerpo"})
	}
	if record.Pending {
		return true, inProgress(c)
	}
	return true, writeStoredResponse(c, record)
}

func release(ctx context.Context, store pkgredis.IdempotencyStore, key string, log *logger.Logger) {
	if err := store.Del(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("liberar llave de idempotencia")
	}
}

func inProgress(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "otra petición con la misma llave está en curso"})
}

func unavailable(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: msg})
}

func buildScope(c *fiber.Ctx) string {
	return strings.Join([]string{GetUserID(c), c.Method(), c.Path()}, "|")
}

func writeStoredResponse(c *fiber.Ctx, record idempotencyRecord) error {
	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		return unavailable(c, "registro de idempotencia inválido")
	}
	if record.ContentType != "" {
		c.Set(fiber.HeaderContentType, record.ContentType)
	}
	c.Set("Idempotent-Replay", "true")
	return c.Status(record.Status).Send(body)
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}
