package intent

import "strings"

// Specialty is a medical specialty with the accent-free stem used to match
// it in text and in the store.
type Specialty struct {
	Name string
	Stem string
}

// Order matters: "medicina interna" must be tried before "medicina general".
var specialties = []struct {
	Specialty
	triggers []string
}{
	{Specialty{"Cardiología", "cardiolog"}, []string{"cardiolog", "corazon"}},
	{Specialty{"Pediatría", "pediatr"}, []string{"pediatr", "ninos", "nino"}},
	{Specialty{"Ginecología", "ginecolog"}, []string{"ginecolog", "obstetr"}},
	{Specialty{"Dermatología", "dermatolog"}, []string{"dermatolog", "piel"}},
	{Specialty{"Oftalmología", "oftalmolog"}, []string{"oftalmolog", "ojos", "vista"}},
	{Specialty{"Traumatología", "traumatolog"}, []string{"traumatolog", "ortoped", "huesos"}},
	{Specialty{"Neurología", "neurolog"}, []string{"neurolog"}},
	{Specialty{"Psicología", "psicolog"}, []string{"psicolog", "psiquiatr"}},
	{Specialty{"Nutrición", "nutricion"}, []string{"nutricion", "nutriolog", "dieta"}},
	{Specialty{"Odontología", "odontolog"}, []string{"odontolog", "dentista", "dientes"}},
	{Specialty{"Endocrinología", "endocrinolog"}, []string{"endocrinolog"}},
	{Specialty{"Medicina Interna", "medicina interna"}, []string{"medicina interna", "internista"}},
	{Specialty{"Medicina General", "medicina general"}, []string{"medicina general", "medico general", "consulta general"}},
}

// ExtractSpecialty finds the first specialty mentioned in normalized text.
func ExtractSpecialty(normalized string) *Specialty {
	for _, s := range specialties {
		for _, t := range s.triggers {
			if strings.Contains(normalized, t) {
				sp := s.Specialty
				return &sp
			}
		}
	}
	return nil
}

// appointmentTopics are the reasons an appointment can be searched by.
var appointmentTopics = []string{
	"glucemia", "diabetes", "presion", "hipertension", "cardiologia", "pediatria",
	"ginecologia", "dermatologia", "oftalmologia", "ultrasonido", "radiografia",
	"laboratorio", "covid", "dengue", "vacuna", "control prenatal", "chequeo",
}

// ExtractTopic returns the first appointment topic in normalized text.
func ExtractTopic(normalized string) string {
	for _, t := range appointmentTopics {
		if strings.Contains(normalized, t) {
			return t
		}
	}
	return ""
}

// medicalConditions narrow a medical-info search.
var medicalConditions = []string{
	"diabetes", "hipertension", "presion alta", "dengue", "covid", "influenza",
	"gripe", "asma", "obesidad", "colesterol", "migrana", "gastritis", "anemia",
	"zika", "chikungunya", "embarazo", "varicela", "neumonia", "tiroides",
}

// ExtractCondition returns the first known condition in normalized text.
func ExtractCondition(normalized string) string {
	for _, c := range medicalConditions {
		if strings.Contains(normalized, c) {
			return c
		}
	}
	return ""
}

// services maps price-question wording to the service name stem.
var services = []struct {
	stem     string
	triggers []string
}{
	{"ultrasonido", []string{"ultrasonido", "ecografia"}},
	{"laboratorio", []string{"laboratorio", "examen de sangre", "analisis de sangre"}},
	{"radiografia", []string{"radiografia", "rayos x"}},
	{"vacuna", []string{"vacuna"}},
	{"electrocardiograma", []string{"electrocardiograma"}},
	{"consulta general", []string{"consulta general", "medicina general"}},
}

// ExtractService returns the service stem a price question refers to,
// falling back to a specialty stem.
func ExtractService(normalized string) string {
	for _, s := range services {
		for _, t := range s.triggers {
			if strings.Contains(normalized, t) {
				return s.stem
			}
		}
	}
	if sp := ExtractSpecialty(normalized); sp != nil {
		return sp.Stem
	}
	return ""
}

// Category is a general-info topic.
type Category string

const (
	CategorySchedule     Category = "horario"
	CategoryLocation     Category = "ubicacion"
	CategoryContact      Category = "contacto"
	CategoryDocuments    Category = "documentos"
	CategoryPayments     Category = "pagos"
	CategoryInsurance    Category = "seguros"
	CategoryBooking      Category = "proceso_cita"
	CategorySpecialties  Category = "especialidades"
	CategoryPrices       Category = "precios"
	CategoryAvailability Category = "disponibilidad"
)

// Evaluated in order; the first category with a matching trigger wins.
var generalInfoTriggers = []struct {
	category Category
	triggers []string
}{
	{CategoryAvailability, []string{"disponibilidad", "disponible", "espacio", "cupo", "hay citas"}},
	{CategoryPrices, []string{"precio", "costo", "cuanto cuesta", "cuanto vale", "cuanto cobran", "tarifa", "cobran"}},
	{CategorySpecialties, []string{"especialidades", "que especialistas", "que servicios", "servicios ofrecen", "servicios tienen"}},
	{CategoryInsurance, []string{"seguro", "aseguradora"}},
	{CategoryPayments, []string{"metodos de pago", "formas de pago", "forma de pago", "pagar", "tarjeta", "efectivo", "transferencia", "cheque"}},
	{CategoryDocuments, []string{"documento", "que debo llevar", "que necesito llevar", "que llevo", "dpi"}},
	{CategoryBooking, []string{"como agendo", "como hago una cita", "como saco una cita", "agendar", "reservar", "sacar cita", "sacar una cita", "programar una cita", "hacer una cita"}},
	{CategoryContact, []string{"telefono", "contacto", "correo", "email", "whatsapp", "llamar", "comunicarme"}},
	{CategoryLocation, []string{"ubicacion", "direccion", "donde estan", "donde queda", "donde se encuentran", "como llego", "ubicados"}},
	{CategorySchedule, []string{"horario", "que hora abren", "a que hora abren", "a que hora cierran", "abren", "cierran", "dias de atencion", "que dias atienden", "atienden"}},
}

// AnalysisKind names a computed analysis.
type AnalysisKind string

const (
	AnalysisSpecialtyTrend AnalysisKind = "tendencia_citas_especialidad"
	AnalysisFollowUpRate   AnalysisKind = "tasa_reconsultas"
	AnalysisAgeCorrelation AnalysisKind = "correlacion_edad_consultas"
)

// Analysis periods. PeriodYear is the default.
const (
	PeriodMonth    = "mes"
	PeriodQuarter  = "trimestre"
	PeriodSemester = "semestre"
	PeriodYear     = "año"
)
