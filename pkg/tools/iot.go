package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// IotProperty is one queryable property of an IotDescriptor.
type IotProperty struct {
	Description string
	Type        string
}

// IotParam describes one parameter of an IotMethod.
type IotParam struct {
	Name        string
	Type        string
	Description string
}

// IotMethod is one invocable action of an IotDescriptor.
type IotMethod struct {
	Description string
	// Parameters lists this method's parameters; only the first is
	// exposed to the model as a tool argument, per spec.md §4.9
	// ("parameters derived from the descriptor's first parameter").
	Parameters []IotParam
}

// IotDescriptor is one device-reported IoT capability set, keyed by name
// in the owning session.
type IotDescriptor struct {
	Name        string
	Description string
	Properties  map[string]IotProperty
	Methods     map[string]IotMethod
}

// IotStateReader reads a property's last-known value for one descriptor.
type IotStateReader interface {
	GetIotProperty(iotName, propName string) (any, bool)
}

// IotCommandSender dispatches a method invocation to the device.
type IotCommandSender interface {
	SendIotCommand(iotName, methodName string, params map[string]any) bool
}

// RegisterIotDescriptor builds and registers the property-getter and
// method-invoking tools for one descriptor, grounded on
// original_source/backend/app/dialogue/iot_service.py's
// _register_function_tools.
func RegisterIotDescriptor(r *Registry, descriptor IotDescriptor, reader IotStateReader, sender IotCommandSender) error {
	lowerName := strings.ToLower(descriptor.Name)

	for propName, prop := range descriptor.Properties {
		propName, prop := propName, prop
		funcName := fmt.Sprintf("iot_get_%s_%s", lowerName, strings.ToLower(propName))
		desc := prop.Description
		if desc == "" {
			desc = propName
		}

		t := &Tool{
			Name:        funcName,
			Description: fmt.Sprintf("查询%s的%s", descriptor.Name, desc),
			Schema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"response_success": {
						Type:        "string",
						Description: "查询成功时的友好回复，必须使用{value}作为占位符表示查询到的值",
					},
				},
				Required: []string{"response_success"},
			},
			ReturnDirect: true,
			Handler: func(ctx context.Context, args map[string]any, tc *Context) (string, error) {
				if reader == nil {
					return "无法获取设置", nil
				}
				value, ok := reader.GetIotProperty(descriptor.Name, propName)
				if !ok {
					return "无法获取设置", nil
				}
				resp, _ := args["response_success"].(string)
				if resp != "" {
					return strings.ReplaceAll(resp, "{value}", fmt.Sprintf("%v", value)), nil
				}
				return fmt.Sprintf("当前的设置为%v", value), nil
			},
		}
		if err := r.Register(t); err != nil {
			return err
		}
	}

	for methodName, method := range descriptor.Methods {
		methodName, method := methodName, method
		funcName := fmt.Sprintf("iot_%s_%s", descriptor.Name, methodName)

		paramName := "value"
		paramType := "string"
		paramDesc := "参数"
		if len(method.Parameters) > 0 {
			p := method.Parameters[0]
			paramName = p.Name
			if p.Type != "" {
				paramType = p.Type
			}
			paramDesc = p.Description
		}

		t := &Tool{
			Name: funcName,
			Description: fmt.Sprintf("%s - %s", firstNonEmpty(descriptor.Description, descriptor.Name),
				firstNonEmpty(method.Description, methodName)),
			Schema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					paramName: {Type: paramType, Description: paramDesc},
					"response_success": {
						Type:        "string",
						Description: "操作成功时的友好回复,关于该设备的操作结果，设备名称使用description中的名称，不要出现占位符",
					},
				},
				Required: []string{paramName, "response_success"},
			},
			ReturnDirect: true,
			Handler: func(ctx context.Context, args map[string]any, tc *Context) (string, error) {
				responseSuccess, _ := args["response_success"].(string)
				params := make(map[string]any, len(args))
				for k, v := range args {
					if k == "response_success" {
						continue
					}
					params[k] = v
				}
				if sender == nil || !sender.SendIotCommand(descriptor.Name, methodName, params) {
					return "操作失败", nil
				}
				if responseSuccess == "" {
					responseSuccess = "操作成功"
				}
				return responseSuccess, nil
			},
		}
		if err := r.Register(t); err != nil {
			return err
		}
	}

	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
