package models

// PatientChanges изменения карточек пациентов для синхронизации.
type PatientChanges struct {
	Created []Patient `json:"created"`
	Updated []Patient `json:"updated"`
	Deleted []string  `json:"deleted"`
}

// NoteChanges изменения заметок. Заметки встроены в карточку, поэтому
// отдаются только созданные.
type NoteChanges struct {
	Created []NoteChange `json:"created"`
	Updated []NoteChange `json:"updated"`
	Deleted []string     `json:"deleted"`
}

// NoteChange заметка вместе с карточкой, к которой она относится.
type NoteChange struct {
	Note
	PatientID string `json:"patient_id"`
}

// PullResult ответ на запрос изменений.
type PullResult struct {
	Changes   PullChanges `json:"changes"`
	Timestamp int64       `json:"timestamp"`
}

// PullChanges изменения по всем таблицам клиента.
type PullChanges struct {
	Patients      PatientChanges `json:"patients"`
	ClinicalNotes NoteChanges    `json:"clinical_notes"`
}

// PushChanges изменения, присланные клиентом.
type PushChanges struct {
	Patients PushPatientChanges `json:"patients"`
}

// PushPatientChanges изменения карточек от клиента.
type PushPatientChanges struct {
	Created []PatientInput    `json:"created"`
	Updated []PushPatientEdit `json:"updated"`
	Deleted []string          `json:"deleted"`
}

// PushPatientEdit частичное обновление карточки с ее идентификатором.
type PushPatientEdit struct {
	ID string `json:"id"`
	PatientUpdate
}

// PushResult итог применения изменений.
type PushResult struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}
