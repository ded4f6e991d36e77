// Package importapp creates patients and devices from spreadsheets.
package importapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/bulk"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/importer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	beneficiaryTypes = []string{
		string(partner.BeneficiaryAssureSocial),
		string(partner.BeneficiaryConjoint),
		string(partner.BeneficiaryEnfant),
		string(partner.BeneficiaryAscendant),
	}
	affiliations = []string{string(partner.AffiliationCNSS), string(partner.AffiliationCNRPS)}
)

// rowCreator persists one validated record inside a transaction
type rowCreator func(ctx context.Context, repos uow.Repositories, rec importer.Record) error

// ImportService runs spreadsheet imports
type ImportService struct {
	repos   uow.Repositories
	txScope uow.TransactionScope
	maxRows int
	logger  *zap.Logger
}

// NewImportService creates a new ImportService. maxRows <= 0 uses
// importer.DefaultMaxRows.
func NewImportService(repos uow.Repositories, txScope uow.TransactionScope, maxRows int, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = importer.DefaultMaxRows
	}
	return &ImportService{repos: repos, txScope: txScope, maxRows: maxRows, logger: logger}
}

// FieldsFor returns the importable fields of an entity type
func FieldsFor(entityType bulk.ImportEntityType) ([]importer.TargetField, error) {
	switch entityType {
	case bulk.ImportEntityPatients:
		return importer.PatientFields(), nil
	case bulk.ImportEntityDevices:
		return importer.DeviceFields(), nil
	}
	return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Invalid import entity type: "+string(entityType))
}

// Preview reads a file and proposes a column mapping without writing anything
func (s *ImportService) Preview(ctx context.Context, entityType bulk.ImportEntityType, upload Upload) (*PreviewResponse, error) {
	fields, err := FieldsFor(entityType)
	if err != nil {
		return nil, err
	}
	sheet, err := importer.ReadSpreadsheet(upload.Body, upload.FileName, s.maxRows)
	if err != nil {
		return nil, err
	}
	rows := sheet.Rows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	return &PreviewResponse{
		FileName:  upload.FileName,
		Headers:   sheet.Headers,
		Rows:      rows,
		TotalRows: len(sheet.Rows),
		Fields:    fields,
		Mapping:   importer.ProposeMapping(sheet.Headers, fields),
	}, nil
}

// ImportPatients creates one patient per valid row, each with its own PAT code
func (s *ImportService) ImportPatients(ctx context.Context, actor identity.Actor, req ImportRequest) (*ImportResult, error) {
	rules := []importer.FieldRule{
		{Field: "first_name", Type: importer.TypeString, Required: true, MaxLength: 100},
		{Field: "last_name", Type: importer.TypeString, Required: true, MaxLength: 100},
		{Field: "telephone", Type: importer.TypeString, Required: true, MaxLength: 50},
		{Field: "telephone_two", Type: importer.TypeString, MaxLength: 50},
		{Field: "cin", Type: importer.TypeString, MaxLength: 20},
		{Field: "cnam_id", Type: importer.TypeString, MaxLength: 50},
		{Field: "date_of_birth", Type: importer.TypeDate},
		{Field: "governorate", Type: importer.TypeString, MaxLength: 100},
		{Field: "delegation", Type: importer.TypeString, MaxLength: 100},
		{Field: "beneficiary_type", Type: importer.TypeString, OneOf: beneficiaryTypes},
		{Field: "affiliation", Type: importer.TypeString, OneOf: affiliations},
		{Field: "weight", Type: importer.TypeDecimal},
		{Field: "height", Type: importer.TypeDecimal},
	}
	return s.run(ctx, actor, bulk.ImportEntityPatients, importer.PatientFields(), rules, req, createPatient)
}

// ImportDevices creates one ACTIVE device per valid row, each with its own
// DEV code. A row without a stock location goes to the actor's location.
func (s *ImportService) ImportDevices(ctx context.Context, actor identity.Actor, req ImportRequest) (*ImportResult, error) {
	rules := []importer.FieldRule{
		{Field: "name", Type: importer.TypeString, Required: true, MaxLength: 200},
		{Field: "brand", Type: importer.TypeString, MaxLength: 100},
		{Field: "model", Type: importer.TypeString, MaxLength: 100},
		{Field: "serial_number", Type: importer.TypeString, MaxLength: 100},
		{Field: "purchase_price", Type: importer.TypeDecimal},
		{Field: "selling_price", Type: importer.TypeDecimal},
		{Field: "rental_price", Type: importer.TypeDecimal},
	}
	locations := make(map[string]uuid.UUID)
	create := func(ctx context.Context, repos uow.Repositories, rec importer.Record) error {
		locationID, err := resolveLocation(ctx, repos, locations, rec.Get("stock_location"), actor.StockLocationID)
		if err != nil {
			return err
		}
		return createDevice(ctx, repos, rec, locationID)
	}
	return s.run(ctx, actor, bulk.ImportEntityDevices, importer.DeviceFields(), rules, req, create)
}

// History lists past import runs, newest first
func (s *ImportService) History(ctx context.Context, filter HistoryFilter) ([]HistoryResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, "", "", "").
		With("entity_type", filter.EntityType)
	domainFilter.OrderBy = ""

	runs, err := s.repos.Imports().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Imports().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]HistoryResponse, len(runs))
	for i := range runs {
		out[i] = ToHistoryResponse(&runs[i])
	}
	return out, total, nil
}

// run reads the file, resolves the mapping and creates rows one transaction
// at a time. Domain errors reject the row; any other error aborts the run.
func (s *ImportService) run(
	ctx context.Context,
	actor identity.Actor,
	entityType bulk.ImportEntityType,
	fields []importer.TargetField,
	rules []importer.FieldRule,
	req ImportRequest,
	create rowCreator,
) (*ImportResult, error) {
	sheet, err := importer.ReadSpreadsheet(req.Body, req.FileName, s.maxRows)
	if err != nil {
		return nil, err
	}
	mapping := req.Mapping
	if len(mapping) == 0 {
		mapping = importer.MappingFromProposal(importer.ProposeMapping(sheet.Headers, fields))
	}
	columns, err := importer.ResolveMapping(sheet.Headers, fields, mapping)
	if err != nil {
		return nil, err
	}

	history, err := bulk.NewImportHistory(entityType, req.FileName, req.Size, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Imports().Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	records := importer.Records(sheet, columns)
	ec := importer.NewErrorCollection(0)
	created := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			s.finish(ctx, history, len(records), created, ec)
			return nil, err
		}
		if !importer.Validate(rec, rules, ec) {
			continue
		}
		err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
			return create(ctx, repos, rec)
		})
		var domainErr *shared.DomainError
		switch {
		case err == nil:
			created++
		case errors.As(err, &domainErr):
			ec.Add(rec.Line, "", domainErr.Message)
		default:
			ec.Add(rec.Line, "", "unexpected error")
			s.finish(ctx, history, len(records), created, ec)
			return nil, fmt.Errorf("import aborted at row %d: %w", rec.Line, err)
		}
	}

	s.finish(ctx, history, len(records), created, ec)
	s.logger.Info("spreadsheet imported",
		zap.String("entity_type", string(entityType)),
		zap.String("file_name", req.FileName),
		zap.Int("total", len(records)),
		zap.Int("created", created),
		zap.Int("errors", ec.TotalCount()))

	return &ImportResult{
		HistoryID:   history.ID,
		Total:       len(records),
		Created:     created,
		Skipped:     len(records) - created,
		Errors:      ec.Errors(),
		TotalErrors: ec.TotalCount(),
		IsTruncated: ec.IsTruncated(),
	}, nil
}

func (s *ImportService) finish(ctx context.Context, history *bulk.ImportHistory, total, created int, ec *importer.ErrorCollection) {
	if err := history.Complete(total, created, total-created, ec.Errors()); err != nil {
		s.logger.Warn("failed to complete import history", zap.Error(err))
		return
	}
	if err := s.repos.Imports().Save(ctx, history); err != nil {
		s.logger.Warn("failed to save import history",
			zap.String("history_id", history.ID.String()),
			zap.Error(err))
	}
}

func createPatient(ctx context.Context, repos uow.Repositories, rec importer.Record) error {
	cin := rec.Get("cin")
	if cin != "" {
		exists, err := repos.Patients().ExistsByCIN(ctx, cin)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "A patient with CIN "+cin+" already exists")
		}
	}

	code, err := repos.Codes().Next(ctx, shared.CodePatient)
	if err != nil {
		return err
	}
	patient, err := partner.NewPatient(code, rec.Get("first_name"), rec.Get("last_name"), rec.Get("telephone"))
	if err != nil {
		return err
	}
	beneficiary := partner.BeneficiaryType(enumValue(rec.Get("beneficiary_type"), beneficiaryTypes))
	affiliation := partner.Affiliation(enumValue(rec.Get("affiliation"), affiliations))
	if err := patient.SetCoverage(rec.Get("cnam_id"), beneficiary, affiliation); err != nil {
		return err
	}

	patient.CIN = cin
	patient.TelephoneTwo = rec.Get("telephone_two")
	if v := rec.Get("date_of_birth"); v != "" {
		dob, err := importer.ParseDate(v)
		if err != nil {
			return shared.NewDomainError("INVALID_DATE", "Invalid date of birth")
		}
		patient.DateOfBirth = &dob
	}
	patient.Governorate = rec.Get("governorate")
	patient.Delegation = rec.Get("delegation")
	patient.DetailedAddress = rec.Get("detailed_address")
	patient.Weight = nullDecimal(rec.Get("weight"))
	patient.Height = nullDecimal(rec.Get("height"))
	patient.MedicalHistory = rec.Get("medical_history")
	patient.GeneralNote = rec.Get("general_note")

	return repos.Patients().Save(ctx, patient)
}

func createDevice(ctx context.Context, repos uow.Repositories, rec importer.Record, locationID *uuid.UUID) error {
	code, err := repos.Codes().Next(ctx, shared.CodeDevice)
	if err != nil {
		return err
	}
	device, err := catalog.NewMedicalDevice(code, rec.Get("name"), deviceTypeOf(rec.Get("type")))
	if err != nil {
		return err
	}
	device.Brand = rec.Get("brand")
	device.Model = rec.Get("model")
	device.SerialNumber = rec.Get("serial_number")
	device.TechnicalSpecs = rec.Get("technical_specs")
	device.Destination = destinationOf(rec.Get("destination"))

	prices := []struct {
		field  string
		target *decimal.Decimal
	}{
		{"purchase_price", &device.PurchasePrice},
		{"selling_price", &device.SellingPrice},
		{"rental_price", &device.RentalPrice},
	}
	for _, p := range prices {
		v := rec.Get(p.field)
		if v == "" {
			continue
		}
		d, err := importer.ParseDecimal(v)
		if err != nil || d.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", p.field+" must be a positive amount")
		}
		*p.target = d
	}
	if locationID != nil {
		device.MoveTo(*locationID)
	}
	return repos.Devices().Save(ctx, device)
}

// resolveLocation finds a location by name, caching hits for the run
func resolveLocation(ctx context.Context, repos uow.Repositories, cache map[string]uuid.UUID, name string, fallback *uuid.UUID) (*uuid.UUID, error) {
	if name == "" {
		return fallback, nil
	}
	if id, ok := cache[name]; ok {
		return &id, nil
	}
	loc, err := repos.Locations().FindByName(ctx, name)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("UNKNOWN_LOCATION", "Unknown stock location: "+name)
	}
	if err != nil {
		return nil, err
	}
	cache[name] = loc.ID
	return &loc.ID, nil
}

// enumValue returns the allowed value matching v once both are normalised
func enumValue(v string, allowed []string) string {
	if v == "" {
		return ""
	}
	n := importer.Normalize(v)
	for _, a := range allowed {
		if importer.Normalize(a) == n {
			return a
		}
	}
	return ""
}

func deviceTypeOf(v string) catalog.DeviceType {
	n := importer.Normalize(v)
	if strings.Contains(n, "diagnos") || strings.Contains(n, "polygraph") {
		return catalog.DeviceTypeDiagnostic
	}
	return catalog.DeviceTypeMedical
}

func destinationOf(v string) catalog.Destination {
	n := importer.Normalize(v)
	if strings.Contains(n, "vente") || strings.Contains(n, "sale") {
		return catalog.DestinationForSale
	}
	return catalog.DestinationForRent
}

func nullDecimal(v string) decimal.NullDecimal {
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := importer.ParseDecimal(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
