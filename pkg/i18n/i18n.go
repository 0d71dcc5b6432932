package i18n

import "strings"

var translations = map[string]string{
	"invalid request":              "Richiesta non valida",
	"enter a name":                 "Inserisci un nome!",
	"invalid email or password":    "Email o password non validi",
	"email already registered":     "Email già registrata",
	"confirmation required":        "Devi confermare l'email: disabilita la conferma email nella configurazione del server",
	"missing authorization token":  "Token di autenticazione mancante",
	"invalid token":                "Token non valido",
	"unauthorized":                 "Accesso non autorizzato",
	"user not found":               "Utente non trovato",
	"failed to validate user":      "Errore nella verifica dell'utente",
	"failed to generate token":     "Errore nella generazione del token",
	"peer_id query parameter required": "Il parametro peer_id è obbligatorio",
	"invalid peer_id":              "peer_id non valido",
	"failed to fetch profiles":     "Errore nel caricamento degli utenti",
	"failed to fetch messages":     "Errore nel caricamento dei messaggi",
	"failed to scan message":       "Errore nella lettura del messaggio",
	"failed to send message":       "Errore invio messaggio",
	"empty message":                "Il messaggio è vuoto",
	"invalid message type":         "Tipo di messaggio non valido",
	"media_url required for media messages": "media_url obbligatorio per i messaggi multimediali",
	"invalid receiver_id":          "receiver_id non valido",
	"receiver not found":           "Destinatario non trovato",
	"cannot message yourself":      "Non puoi inviare messaggi a te stesso",
	"file is required":             "Il file è obbligatorio",
	"file too large":               "Il file è troppo grande",
	"invalid storage key":          "Chiave di archiviazione non valida",
	"failed to store file":         "Errore upload file",
	"invalid subscription":         "Sottoscrizione non valida",
	"failed to save subscription":  "Errore nel salvataggio della sottoscrizione",
	"websocket upgrade failed":     "Errore nella connessione WebSocket",
	"rate limiter error":           "Errore nel limitatore di richieste",
	"rate limit exceeded":          "Troppe richieste, riprova più tardi",
	"internal server error":        "Errore interno del server",
	"not found":                    "Non trovato",
}

var prefixTranslations = map[string]string{
	"failed to hash password:":  "Errore nella cifratura della password",
	"failed to register:":       "Errore nella registrazione",
	"failed to sign token:":     "Errore nella firma del token",
	"failed to parse token:":    "Token non valido",
	"failed to query profile:":  "Errore nella lettura del profilo",
}

// Translate maps an English message key to its Italian user-facing string.
// Unknown keys pass through untouched.
func Translate(message string) string {
	if translated, ok := translations[message]; ok {
		return translated
	}
	for prefix, translated := range prefixTranslations {
		if strings.HasPrefix(message, prefix) {
			return translated
		}
	}
	return message
}
