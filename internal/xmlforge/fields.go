package xmlforge

import (
	"fmt"
	"strings"

	"sms-notifier/internal/models"
)

// Canonical field names, shared by both field spec tables.
const (
	FieldPhoneNumber      = "phoneNumber"
	FieldMessage          = "message"
	FieldBrandCode        = "brandCode"
	FieldBrandName        = "brandName"
	FieldChannelCode      = "channelCode"
	FieldChannelName      = "channelName"
	FieldOrderID          = "orderId"
	FieldCreatedAt        = "createdAt"
	FieldActionExpression = "actionExpression"
)

// FieldSpec declares one extractable field: where it lives, how to pick
// between attribute and text, and whether its absence fails the document.
type FieldSpec struct {
	Name           string
	Path           Path
	Disambiguation Disambiguation
	Required       bool
	// Fallbacks are tried in order when the primary path is absent.
	// Flat JSON events name the phone field inconsistently.
	Fallbacks []Path
}

// ExtractionFailure reports every missing required field of one document,
// not just the first, so a single log line shows the full damage.
type ExtractionFailure struct {
	MissingFields []string
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
}

// SOAP path tables. The shapes come from the ATG ProcessCommunication BOD:
// everything hangs off Envelope/Body/ProcessCommunication.
var (
	soapBase = []Segment{
		Key("SOAP-ENV:Envelope"),
		Key("SOAP-ENV:Body"), Index(0),
		Key("ProcessCommunication"), Index(0),
	}
	soapCommunication = append(append([]Segment{}, soapBase...),
		Key("DataArea"), Index(0),
		Key("Communication"), Index(0),
	)
	soapBrandCode = append(append([]Segment{}, soapCommunication...),
		Key("CommunicationHeader"), Index(0),
		Key("BrandChannel"), Index(0),
		Key("Brand"), Index(0),
		Key("oa:Code"), Index(0),
	)
	soapChannelCode = append(append([]Segment{}, soapCommunication...),
		Key("CommunicationHeader"), Index(0),
		Key("BrandChannel"), Index(0),
		Key("Channel"), Index(0),
		Key("oa:Code"), Index(0),
	)
)

func soapPath(tail ...Segment) Path {
	return MustPath(append(append([]Segment{}, soapCommunication...), tail...)...)
}

// SOAPFieldSpecs returns the field table for ATG SOAP order notifications.
func SOAPFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{
			Name: FieldPhoneNumber,
			Path: soapPath(
				Key("CommunicationHeader"), Index(0),
				Key("CustomerParty"), Index(0),
				Key("Contact"), Index(0),
				Key("SMSTelephoneCommunication"), Index(0),
				Key("oa:FormattedNumber"), Index(0),
			),
			Disambiguation: TextContent,
			Required:       true,
		},
		{
			Name: FieldMessage,
			Path: soapPath(
				Key("CommunicationItem"), Index(0),
				Key("oa:Message"), Index(0),
				Key("oa:Note"), Index(0),
			),
			Disambiguation: TextContent,
			Required:       true,
		},
		{
			Name:           FieldBrandCode,
			Path:           MustPath(soapBrandCode...),
			Disambiguation: TextContent,
			Required:       true,
		},
		{
			Name:           FieldBrandName,
			Path:           MustPath(soapBrandCode...),
			Disambiguation: PreferAttribute("name"),
		},
		{
			Name:           FieldChannelCode,
			Path:           MustPath(soapChannelCode...),
			Disambiguation: TextContent,
		},
		{
			Name:           FieldChannelName,
			Path:           MustPath(soapChannelCode...),
			Disambiguation: PreferAttribute("name"),
		},
		{
			Name: FieldOrderID,
			Path: MustPath(append(append([]Segment{}, soapBase...),
				Key("oa:ApplicationArea"), Index(0),
				Key("oa:BODID"), Index(0),
			)...),
			Disambiguation: TextContent,
		},
		{
			Name: FieldCreatedAt,
			Path: MustPath(append(append([]Segment{}, soapBase...),
				Key("oa:ApplicationArea"), Index(0),
				Key("oa:CreationDateTime"), Index(0),
			)...),
			Disambiguation: TextContent,
		},
		{
			Name: FieldActionExpression,
			Path: MustPath(append(append([]Segment{}, soapBase...),
				Key("DataArea"), Index(0),
				Key("oa:Process"), Index(0),
				Key("oa:ActionCriteria"), Index(0),
				Key("oa:ActionExpression"), Index(0),
			)...),
			Disambiguation: TextContent,
		},
	}
}

// JSONFieldSpecs returns the field table for flat JSON order events
// ({banner, to|phoneNumber, orderNumber, message?}).
func JSONFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{
			Name:           FieldPhoneNumber,
			Path:           MustPath(Key("to")),
			Fallbacks:      []Path{MustPath(Key("phoneNumber"))},
			Disambiguation: TextContent,
			Required:       true,
		},
		{
			Name:           FieldMessage,
			Path:           MustPath(Key("message")),
			Disambiguation: TextContent,
			Required:       true,
		},
		{
			Name:           FieldBrandCode,
			Path:           MustPath(Key("banner")),
			Disambiguation: TextContent,
			Required:       true,
		},
		{
			Name:           FieldOrderID,
			Path:           MustPath(Key("orderNumber")),
			Disambiguation: TextContent,
		},
		{
			Name:           FieldCreatedAt,
			Path:           MustPath(Key("createdAt")),
			Disambiguation: TextContent,
		},
		{
			Name:           FieldActionExpression,
			Path:           MustPath(Key("action")),
			Disambiguation: TextContent,
		},
	}
}

// ExtractRecord resolves every spec against the document and assembles a
// NotificationRecord. Missing required fields are collected across the whole
// table before failing, so diagnostics name all of them at once.
func ExtractRecord(x *Extractor, doc *Document, specs []FieldSpec) (*models.NotificationRecord, error) {
	resolved := make(map[string]models.OptionalString, len(specs))
	var missing []string

	for _, spec := range specs {
		value, ok := x.ExtractText(doc, spec.Path, spec.Disambiguation)
		for i := 0; !ok && i < len(spec.Fallbacks); i++ {
			value, ok = x.ExtractText(doc, spec.Fallbacks[i], spec.Disambiguation)
		}
		if !ok {
			if spec.Required {
				missing = append(missing, spec.Name)
			}
			resolved[spec.Name] = models.None()
			continue
		}
		resolved[spec.Name] = models.Some(value)
	}

	if len(missing) > 0 {
		return nil, &ExtractionFailure{MissingFields: missing}
	}

	record, err := models.NewNotificationRecord(
		resolved[FieldPhoneNumber].Or(""),
		resolved[FieldMessage].Or(""),
		resolved[FieldBrandCode].Or(""),
	)
	if err != nil {
		return nil, err
	}
	record.BrandName = resolved[FieldBrandName]
	record.ChannelCode = resolved[FieldChannelCode]
	record.ChannelName = resolved[FieldChannelName]
	record.OrderID = resolved[FieldOrderID]
	record.CreatedAt = resolved[FieldCreatedAt]
	record.ActionExpression = resolved[FieldActionExpression]
	return record, nil
}
