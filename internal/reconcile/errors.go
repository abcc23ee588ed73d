package reconcile

import "fmt"

// Step names the part of a reconciliation that failed.
type Step string

const (
	StepProbe        Step = "probe"
	StepCreateBucket Step = "create-bucket"
	StepTagBucket    Step = "tag-bucket"
	StepOpenArtifact Step = "open-artifact"
	StepRegister     Step = "register"
	StepGetKey       Step = "get-key"
	StepCopy         Step = "copy"
	StepEncrypt      Step = "encrypt"
	StepUpload       Step = "upload"
	StepDownload     Step = "download"
	StepDecrypt      Step = "decrypt"
	StepWrite        Step = "write-artifact"
)

// StepError wraps the cause of a failed reconciliation with the step that
// produced it. Use errors.Is on it to reach the common sentinel.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}
