// Package record defines the unit of data exchanged with the SAPPHIRE API.
//
// A Record is an ordered mapping from field name to a scalar value. The
// transport and batch layers treat records as opaque payload: they never look
// at field names, they only preserve order. Field order inside a record is
// kept on encode and decode so that what the caller built is what the server
// receives.
//
// Tabular sources are converted into records outside the core. ReadCSV and
// ReadJSON cover the file formats accepted by the sapphire command.
package record
