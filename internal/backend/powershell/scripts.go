package powershell

import (
	"strings"
	"text/template"

	"github.com/ezchuang/gotoast/platform"
)

// quote makes s a single quoted PowerShell string. PowerShell also treats
// the typographic single quotes as delimiters, so those are doubled too.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'', '‘', '’', '‚', '‛':
			b.WriteRune(r)
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

var scripts = template.Must(template.New("scripts").Funcs(template.FuncMap{"ps": quote}).Parse(`
{{- define "prelude" -}}
$ErrorActionPreference = 'Stop'
$null = [Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime]
$null = [Windows.UI.Notifications.ToastNotification, Windows.UI.Notifications, ContentType = WindowsRuntime]
$null = [Windows.UI.Notifications.ScheduledToastNotification, Windows.UI.Notifications, ContentType = WindowsRuntime]
$null = [Windows.UI.Notifications.NotificationData, Windows.UI.Notifications, ContentType = WindowsRuntime]
$null = [Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime]
{{- end}}

{{- define "notifier"}}
$notifier = [Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier({{ps .AppID}})
{{- end}}

{{- define "xml"}}
$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
$xml.LoadXml({{ps .XML}})
{{- end}}

{{- define "props"}}
$toast.Tag = {{ps .Tag}}
$toast.Group = {{ps .Group}}
$toast.SuppressPopup = ${{.SuppressPopup}}
{{- if .Expiration}}
$toast.ExpirationTime = [DateTimeOffset]::Parse({{ps .Expiration}}, [Globalization.CultureInfo]::InvariantCulture)
{{- end}}
{{- end}}

{{- define "data"}}
$data = New-Object Windows.UI.Notifications.NotificationData
$data.SequenceNumber = {{.SequenceNumber}}
{{- range $k, $v := .Values}}
$data.Values[{{ps $k}}] = {{ps $v}}
{{- end}}
{{- end}}

{{- define "show"}}{{template "prelude"}}{{template "notifier" .}}{{template "xml" .}}
$toast = New-Object Windows.UI.Notifications.ToastNotification $xml
{{- template "props" .}}
{{- with .Data}}{{template "data" .}}
$toast.Data = $data
{{- end}}
{{- if .ListenSeconds}}
Register-ObjectEvent -InputObject $toast -EventName Activated -SourceIdentifier gotoast.activated | Out-Null
Register-ObjectEvent -InputObject $toast -EventName Dismissed -SourceIdentifier gotoast.dismissed | Out-Null
Register-ObjectEvent -InputObject $toast -EventName Failed -SourceIdentifier gotoast.failed | Out-Null
{{- end}}
$notifier.Show($toast)
Write-Output '{"event":"shown"}'
{{- if .ListenSeconds}}
$deadline = [DateTime]::UtcNow.AddSeconds({{.ListenSeconds}})
while ([DateTime]::UtcNow -lt $deadline) {
    $e = Wait-Event -Timeout 1
    if ($null -eq $e) { continue }
    Remove-Event -EventIdentifier $e.EventIdentifier
    $a = $e.SourceArgs[1]
    switch ($e.SourceIdentifier) {
        'gotoast.activated' {
            $out = @{ event = 'activated'; arguments = [string]$a.Arguments }
            try {
                $inputs = @{}
                foreach ($kv in $a.UserInput) { $inputs[$kv.Key] = [string]$kv.Value }
                $out.inputs = $inputs
            } catch {
                $out.inputError = $_.Exception.Message
            }
            Write-Output ($out | ConvertTo-Json -Compress)
            return
        }
        'gotoast.dismissed' {
            Write-Output (@{ event = 'dismissed'; reason = [int]$a.Reason } | ConvertTo-Json -Compress)
            # timed out toasts move to the action center and can still be activated
            if ([int]$a.Reason -ne {{$.TimedOut}}) { return }
        }
        'gotoast.failed' {
            Write-Output (@{ event = 'failed'; code = [int]$a.ErrorCode.HResult } | ConvertTo-Json -Compress)
            return
        }
    }
}
{{- end}}
{{end}}

{{- define "update"}}{{template "prelude"}}{{template "notifier" .}}{{template "data" .Data}}
$result = $notifier.Update($data, {{ps .Tag}}, {{ps .Group}})
Write-Output $result.ToString()
{{end}}

{{- define "schedule"}}{{template "prelude"}}{{template "notifier" .}}{{template "xml" .}}
$toast = New-Object Windows.UI.Notifications.ScheduledToastNotification $xml, ([DateTimeOffset]::Parse({{ps .Delivery}}, [Globalization.CultureInfo]::InvariantCulture))
{{- template "props" .}}
$notifier.AddToSchedule($toast)
{{end}}

{{- define "list"}}{{template "prelude"}}{{template "notifier" .}}
foreach ($s in $notifier.GetScheduledToastNotifications()) {
    $out = @{
        tag = $s.Tag
        group = $s.Group
        delivery = $s.DeliveryTime.ToString('o')
        suppressPopup = $s.SuppressPopup
        xml = $s.Content.GetXml()
    }
    if ($null -ne $s.ExpirationTime) { $out.expiration = $s.ExpirationTime.ToString('o') }
    Write-Output ($out | ConvertTo-Json -Compress)
}
{{end}}

{{- define "unschedule"}}{{template "prelude"}}{{template "notifier" .}}
$removed = 0
foreach ($s in $notifier.GetScheduledToastNotifications()) {
    if ($s.Tag -eq {{ps .Tag}} -and $s.Group -eq {{ps .Group}}) {
        $notifier.RemoveFromSchedule($s)
        $removed++
    }
}
Write-Output $removed
{{end}}

{{- define "clear"}}{{template "prelude"}}
[Windows.UI.Notifications.ToastNotificationManager]::History.Clear({{ps .AppID}})
{{end}}

{{- define "remove"}}{{template "prelude"}}
[Windows.UI.Notifications.ToastNotificationManager]::History.Remove({{ps .Tag}}, {{ps .Group}}, {{ps .AppID}})
{{end}}

{{- define "removeGroup"}}{{template "prelude"}}
[Windows.UI.Notifications.ToastNotificationManager]::History.RemoveGroup({{ps .Group}}, {{ps .AppID}})
{{end}}
`))

// scriptData feeds every template; each uses the fields it needs.
type scriptData struct {
	AppID         string
	XML           string
	Tag           string
	Group         string
	SuppressPopup bool
	Expiration    string
	Delivery      string
	Data          *dataValues
	ListenSeconds int
}

// TimedOut is the dismissal reason after which the show script keeps
// listening.
func (scriptData) TimedOut() int32 { return platform.ReasonTimedOut }

type dataValues struct {
	SequenceNumber uint32
	Values         map[string]string
}

func render(name string, data scriptData) (string, error) {
	var b strings.Builder
	if err := scripts.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
