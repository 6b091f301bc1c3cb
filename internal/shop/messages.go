package shop

const (
	MsgAdded            = "In den Warenkorb gelegt"
	MsgQtyUpdated       = "Menge aktualisiert"
	MsgRemoved          = "Artikel entfernt"
	MsgLineNotFound     = "Artikel nicht gefunden"
	MsgProductNotFound  = "Produkt nicht gefunden"
	MsgCouponApplied    = "Gutschein angewendet"
	MsgCouponInvalid    = "Ungültiger Code"
	MsgLoginFirst       = "Bitte zuerst einloggen"
	MsgRegistered       = "Registriert + Rabatt aktiv"
	MsgLoggedIn         = "Angemeldet"
	MsgGuest            = "Als Gast fortgefahren"
	MsgLoggedOut        = "Abgemeldet"
	MsgAddressSaved     = "Adresse gespeichert"
	MsgConsentAll       = "Cookie-Auswahl gespeichert"
	MsgConsentNecessary = "Cookies abgelehnt"
	MsgRegisterToPay    = "Bitte registrieren oder anmelden, um fortzufahren."
	MsgEmptyCart        = "Dein Warenkorb ist leer."
	MsgUnknownMethod    = "Zahlungsart nicht verfügbar."
	MsgPaymentStarted   = "Zahlung wird gestartet: %s • Gesamt: %s"
)
