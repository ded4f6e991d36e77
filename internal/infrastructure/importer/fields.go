package importer

// FieldFullName is a virtual patient field split into first and last name
const FieldFullName = "full_name"

// PatientFields are the importable patient columns
func PatientFields() []TargetField {
	return []TargetField{
		{Key: "first_name", Label: "Prénom", Required: true, Aliases: []string{"prenom", "first name", "firstname", "given name"}},
		{Key: "last_name", Label: "Nom", Required: true, Aliases: []string{"nom", "nom de famille", "last name", "lastname", "surname", "family name"}},
		{Key: FieldFullName, Label: "Nom complet", Aliases: []string{"nom complet", "nom et prenom", "nom prenom", "full name", "patient", "name"}},
		{Key: "telephone", Label: "Téléphone", Required: true, Aliases: []string{"tel", "telephone", "phone", "mobile", "gsm", "tel 1", "telephone 1"}},
		{Key: "telephone_two", Label: "Téléphone 2", Aliases: []string{"tel 2", "telephone 2", "phone 2", "telephone secondaire", "autre telephone"}},
		{Key: "cin", Label: "CIN", Aliases: []string{"cin", "carte identite", "numero cin", "id card"}},
		{Key: "cnam_id", Label: "Identifiant CNAM", Aliases: []string{"cnam", "numero cnam", "id cnam", "matricule cnam"}},
		{Key: "date_of_birth", Label: "Date de naissance", Aliases: []string{"naissance", "date naissance", "date de naissance", "birth date", "dob", "birthday"}},
		{Key: "governorate", Label: "Gouvernorat", Aliases: []string{"gouvernorat", "region", "governorate", "ville"}},
		{Key: "delegation", Label: "Délégation", Aliases: []string{"delegation", "localite"}},
		{Key: "detailed_address", Label: "Adresse", Aliases: []string{"adresse", "adresse detaillee", "address"}},
		{Key: "beneficiary_type", Label: "Type bénéficiaire", Aliases: []string{"beneficiaire", "type beneficiaire", "beneficiary"}},
		{Key: "affiliation", Label: "Caisse", Aliases: []string{"caisse", "affiliation", "cnss cnrps"}},
		{Key: "weight", Label: "Poids", Aliases: []string{"poids", "weight", "kg"}},
		{Key: "height", Label: "Taille", Aliases: []string{"taille", "height", "cm"}},
		{Key: "medical_history", Label: "Antécédents", Aliases: []string{"antecedents", "historique medical", "medical history"}},
		{Key: "general_note", Label: "Note", Aliases: []string{"note", "notes", "remarque", "commentaire", "observation"}},
	}
}

// DeviceFields are the importable medical device columns
func DeviceFields() []TargetField {
	return []TargetField{
		{Key: "name", Label: "Nom", Required: true, Aliases: []string{"nom", "appareil", "designation", "device", "device name", "nom appareil"}},
		{Key: "type", Label: "Type", Aliases: []string{"type", "type appareil", "categorie"}},
		{Key: "brand", Label: "Marque", Aliases: []string{"marque", "brand", "fabricant", "manufacturer"}},
		{Key: "model", Label: "Modèle", Aliases: []string{"modele", "model", "reference modele"}},
		{Key: "serial_number", Label: "Numéro de série", Aliases: []string{"serie", "numero de serie", "n serie", "serial", "serial number", "sn"}},
		{Key: "purchase_price", Label: "Prix d'achat", Aliases: []string{"prix achat", "prix d achat", "cout", "purchase price"}},
		{Key: "selling_price", Label: "Prix de vente", Aliases: []string{"prix vente", "prix de vente", "selling price", "prix"}},
		{Key: "rental_price", Label: "Prix de location", Aliases: []string{"prix location", "loyer", "location", "rental price"}},
		{Key: "destination", Label: "Destination", Aliases: []string{"destination", "usage", "vente location"}},
		{Key: "technical_specs", Label: "Caractéristiques", Aliases: []string{"caracteristiques", "specifications", "specs", "technical specs"}},
		{Key: "stock_location", Label: "Emplacement", Aliases: []string{"emplacement", "stock", "depot", "location stock", "magasin"}},
	}
}
