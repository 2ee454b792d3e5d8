package render

import "github.com/bwprot/bwprotanalyzer/pkg/model"

// Template is the keyword column and message text for one kind of event.
// Message may use the placeholders listed by Placeholders.
type Template struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Message string `yaml:"message" json:"message"`
}

// typeTemplates covers system-level record types. They win over the
// status table regardless of the event's status.
var typeTemplates = map[string]Template{
	"000": {"START", "Benutzer {user} hat sich angemeldet"},
	"001": {"END", "Benutzer {user} hat sich abgemeldet"},
	"020": {"KASSESTART", "Kasse {user} hat sich angemeldet"},
	"021": {"KASSEEND", "Kasse {user} hat sich abgemeldet"},
	"022": {"KASSEDSTART", "Kasse {user} hat einen Tagesstart durchgeführt"},
	"023": {"KASSEDEND", "Kasse {user} hat einen Tagesabschluss durchgeführt"},
	"031": {"BELCORRECT", "Bediener {user} hat einen fehlerhaften Beleg automatisch korrigiert: {index}"},
	"120": {"NOTEDELETE", "Benutzer {user} hat Notiztexte gelöscht"},
	"121": {"GLOBALCANCEL", "Benutzer {user} hat einen globalen Abbruch verursacht: {info}"},
	"122": {"REFERROR", "Benutzer {user} hat einen Verweisfehler beim Laden einer Tabelle verursacht"},
	"123": {"DIFFINDSATZ", "Benutzer {user} hat eine Differenz zwischen Index und Satz festgestellt"},
	"126": {"DUPLBELNR", "Benutzer {user} hat versucht eine bestehende Belegnummer erneut anzulegen"},
	"128": {"WAWILSTART", "Benutzer {user} hat eine WAWI-Liste gestartet"},
	"130": {"FIBULSTART", "Benutzer {user} hat eine FIBU-Liste gestartet"},
	"132": {"IMPSTART", "Benutzer {user} hat einen Datenimport gestartet"},
	"134": {"WANDLEND", "Benutzer {user} hat die Wandlung eines Beleges abgeschlossen"},
	"136": {"WANDLKOMPSTART", "Benutzer {user} hat eine Komplettwandlung gestartet"},
	"138": {"WANDLTEILSTART", "Benutzer {user} hat eine Teilwandlung gestartet"},
	"140": {"BELPOSDELETE", "Benutzer {user} hat eine Belegposition gelöscht"},
	"142": {"UPDWANDLTEIL", "Benutzer {user} hat einen Beleg für eine Teilwandlung aufbereitet"},
	"144": {"BWTOOL4", "Benutzer {user} hat eine Wandlung mit bwtool4 durchgeführt"},
	"146": {"TRYCATCH", "Benutzer {user} hat einen try-Catch-Fehler verursacht"},
	"148": {"TEMPBELSORTSTART", "Benutzer {user} hat eine temporäre Belegsortierung gestartet"},
	"150": {"TEMPBELSORTEND", "Benutzer {user} hat eine temporäre Belegsortierung abgeschlossen"},
	"152": {"TEMPBELSORTTABSTART", "Benutzer {user} hat eine temporäre Belegsortierung/Tabelle gestartet"},
	"154": {"TEMPBELSORTTABEND", "Benutzer {user} hat eine temporäre Belegsortierung/Tabelle abgeschlossen"},
}

// statusTemplates is the fallback for record types without a type template.
var statusTemplates = map[model.Status]Template{
	model.StatusNew:                     {"NEW", "Benutzer {user} hat einen neuen Datensatz im Bereich {type} angelegt: {index}"},
	model.StatusChange:                  {"CHANGE", "Benutzer {user} hat Datensatz {index} im Bereich {type} geändert:"},
	model.StatusDelete:                  {"DELETE", "Benutzer {user} hat Datensatz {index} im Bereich {type} gelöscht"},
	model.StatusPrint:                   {"PRINT", "Benutzer {user} hat Datensatz {index} im Bereich {type} gedruckt"},
	model.StatusDeleteThroughProcessing: {"DELETEWANDL", "Benutzer {user} hat Beleg {index} durch Wandlung gelöscht"},
}

// noChangesSuffix is appended to a CHANGE line without any effective change.
const noChangesSuffix = " Keine erkennbaren Änderungen"
